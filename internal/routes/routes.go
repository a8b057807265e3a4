package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/blob"
	"github.com/lostfound/found-api/internal/config"
	"github.com/lostfound/found-api/internal/logging"
	"github.com/lostfound/found-api/internal/metrics"
	"github.com/lostfound/found-api/internal/middleware"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/services"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// ReadinessCheck is a named dependency probe reported by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(context.Context) error
}

// Dependencies carries everything the handlers need.
type Dependencies struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Middleware *middleware.Manager
	Auth       *services.AuthService
	Items      *services.ItemService
	Profile    *services.ProfileService
	Blob       *blob.Store // nil disables uploads
	Readiness  []ReadinessCheck
}

// Setup configures all API routes
func Setup(app *fiber.App, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth, deps.Logger)
	itemHandler := NewItemHandler(deps.Items, deps.Logger)
	userHandler := NewUserHandler(deps.Items, deps.Profile, deps.Logger)
	uploadHandler := NewUploadHandler(deps.Blob, deps.Logger)

	// Health check endpoints (no auth required)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(deps.Readiness, deps.Logger))
	app.Get("/version", versionHandler)

	// Metrics endpoint (no auth required)
	app.Get(deps.Config.Observability.MetricsPath, metrics.PrometheusHandler())

	// Swagger documentation endpoint (no auth required)
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Use(metrics.HTTPMetricsMiddleware())

	authenticate := deps.Middleware.Auth.Authenticate()
	idempotent := deps.Middleware.Idempotency.Handle()

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", idempotent, authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/verify", authHandler.Verify)
	authRoutes.Get("/me", authenticate, authHandler.Me)

	api.Get("/categories", listCategories)

	// Item routes; reads are public
	itemRoutes := api.Group("/items")
	itemRoutes.Get("/", itemHandler.List)
	itemRoutes.Get("/:id", itemHandler.Get)
	itemRoutes.Post("/", authenticate, idempotent, itemHandler.Create)
	itemRoutes.Patch("/:id/status", authenticate, itemHandler.UpdateStatus)
	itemRoutes.Delete("/:id", authenticate, itemHandler.Delete)

	// User routes
	userRoutes := api.Group("/users")
	userRoutes.Get("/:id/items", userHandler.Items)
	userRoutes.Get("/:id/stats", userHandler.Stats)
	userRoutes.Put("/:id", authenticate, userHandler.UpdateProfile)
	userRoutes.Post("/:id/reconcile", authenticate, userHandler.Reconcile)

	api.Post("/upload", authenticate, uploadHandler.Upload)

	// 404 handler
	app.Use(notFoundHandler)
}

// respondError renders a service error in the standard envelope.
func respondError(c *fiber.Ctx, err error) error {
	return middleware.WriteError(c, err)
}

// healthCheck returns the health status of the service
// @Summary Health check
// @Description Check if the service is healthy
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /healthz [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   logging.ServiceName,
	})
}

// readinessCheck checks if the service is ready to accept traffic
// @Summary Readiness check
// @Description Check the document store and, when enabled, Redis
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /readyz [get]
func readinessCheck(checks []ReadinessCheck, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, check := range checks {
			if err := check.Check(c.UserContext()); err != nil {
				logger.WithError(err).WithField("dependency", check.Name).Warn("Readiness check failed")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":    "not ready",
					"reason":    check.Name + " unavailable",
					"timestamp": time.Now().UTC(),
				})
			}
		}

		return c.JSON(fiber.Map{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   logging.ServiceName,
		})
	}
}

// versionHandler returns version information
// @Summary Version information
// @Description Get service version and build information
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Version info"
// @Router /version [get]
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": logging.ServiceName,
		"version": logging.Version(),
	})
}

// listCategories returns the accepted item categories
// @Summary List categories
// @Description Categories accepted when posting an item
// @Tags Items
// @Produce json
// @Success 200 {object} map[string]interface{} "Categories"
// @Router /categories [get]
func listCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": models.ItemCategories})
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return respondError(c, apperrors.NotFound("The requested resource was not found"))
}
