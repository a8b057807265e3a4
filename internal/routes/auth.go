package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/middleware"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/services"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth   *services.AuthService
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

func invalidBody() *apperrors.AppError {
	return apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", nil)
}

// Register handles user registration
// @Summary User registration
// @Description Register a new user and start a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Param Idempotency-Key header string false "Idempotency key (UUID)"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse "Missing fields or short password"
// @Failure 409 {object} apperrors.ErrorResponse "Email already registered"
// @Failure 500 {object} apperrors.ErrorResponse "Internal error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	resp, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user login
// @Summary User login
// @Description Exchange email and password for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse "Missing email or password"
// @Failure 401 {object} apperrors.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperrors.ErrorResponse "Internal error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	resp, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// Verify checks a client-held token
// @Summary Verify token
// @Description Resolve a session token to its user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.VerifyRequest true "Token"
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} apperrors.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperrors.ErrorResponse "User no longer exists"
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req models.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	user, err := h.auth.Verify(c.UserContext(), req.Token)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.UserResponse{User: user.Public()})
}

// Me returns the authenticated caller
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security Bearer
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} apperrors.ErrorResponse "Unauthenticated"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		return respondError(c, apperrors.Unauthenticated("No token provided", nil))
	}

	return c.JSON(models.UserResponse{User: models.PublicUser{
		ID:    identity.UserID,
		Name:  identity.Name,
		Email: identity.Email,
	}})
}
