package routes

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/blob"
	"github.com/lostfound/found-api/internal/middleware"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// UploadHandler stores item images in the blob store
type UploadHandler struct {
	store  *blob.Store
	logger *logrus.Logger
}

func NewUploadHandler(store *blob.Store, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		store:  store,
		logger: logger,
	}
}

// Upload stores the raw request body under a randomized name
// @Summary Upload image
// @Description Store the request body and return its public URL
// @Tags Upload
// @Accept octet-stream
// @Produce json
// @Security Bearer
// @Param filename query string true "Original file name"
// @Success 200 {object} blob.Object
// @Failure 400 {object} apperrors.ErrorResponse "Missing filename or body"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthenticated"
// @Failure 503 {object} apperrors.ErrorResponse "Uploads not configured"
// @Router /upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	if h.store == nil {
		return respondError(c, apperrors.NewAppError(apperrors.CodeServiceUnavailable, "Uploads are not configured", nil))
	}

	filename := c.Query("filename")
	if strings.TrimSpace(filename) == "" {
		return respondError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Filename is required", nil))
	}

	body := c.Body()
	if len(body) == 0 {
		return respondError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Request body is empty", nil))
	}

	ctx, span := middleware.StartSpan(c.UserContext(), "upload.put")
	defer span.End()
	middleware.AddSpanAttributes(span, map[string]interface{}{
		"upload.filename": filename,
		"upload.size":     len(body),
		"user.id":         middleware.GetUserID(c),
	})

	// Generic binary uploads get a type derived from the file extension
	contentType := c.Get(fiber.HeaderContentType)
	if contentType == fiber.MIMEOctetStream {
		contentType = ""
	}

	// fasthttp reuses the body buffer after the handler returns
	obj, err := h.store.Put(ctx, filename, contentType, bytes.NewReader(append([]byte(nil), body...)))
	if err != nil {
		middleware.RecordError(span, err)
		if errors.Is(err, blob.ErrEmptyFilename) {
			return respondError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Filename is required", err))
		}
		return respondError(c, apperrors.Internal("Failed to store upload", err))
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  middleware.GetUserID(c),
		"pathname": obj.Pathname,
		"size":     len(body),
	}).Info("Upload stored")

	return c.JSON(obj)
}
