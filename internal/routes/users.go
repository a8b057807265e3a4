package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/middleware"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/services"
)

// UserHandler serves profile pages and profile updates
type UserHandler struct {
	items   *services.ItemService
	profile *services.ProfileService
	logger  *logrus.Logger
}

func NewUserHandler(items *services.ItemService, profile *services.ProfileService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		items:   items,
		profile: profile,
		logger:  logger,
	}
}

// Items lists a user's postings
// @Summary List a user's items
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.ItemListResponse
// @Router /users/{id}/items [get]
func (h *UserHandler) Items(c *fiber.Ctx) error {
	items, err := h.items.ListByOwner(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ItemListResponse{Items: items, Total: len(items)})
}

// Stats counts a user's postings per status
// @Summary User item stats
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.ItemStats
// @Router /users/{id}/stats [get]
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.items.Stats(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}

// UpdateProfile renames the caller and refreshes the name on their items
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Param request body models.UpdateProfileRequest true "New display name"
// @Success 200 {object} models.ProfileUpdateResponse
// @Failure 400 {object} apperrors.ErrorResponse "Name is required"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthenticated"
// @Failure 403 {object} apperrors.ErrorResponse "Not the caller's profile"
// @Failure 404 {object} apperrors.ErrorResponse "User not found"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	updated, err := h.profile.UpdateName(c.UserContext(), middleware.GetIdentity(c), c.Params("id"), req.Name)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ProfileUpdateResponse{
		Success:      true,
		Message:      "Profile updated successfully",
		ItemsUpdated: updated,
	})
}

// Reconcile copies the caller's current name onto their items again
// @Summary Reconcile poster names
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{} "Items updated"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthenticated"
// @Failure 403 {object} apperrors.ErrorResponse "Not the caller's profile"
// @Router /users/{id}/reconcile [post]
func (h *UserHandler) Reconcile(c *fiber.Ctx) error {
	updated, err := h.profile.Reconcile(c.UserContext(), middleware.GetIdentity(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"items_updated": updated})
}
