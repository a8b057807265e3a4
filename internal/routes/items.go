package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/middleware"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/services"
)

// ItemHandler handles found-item endpoints
type ItemHandler struct {
	items  *services.ItemService
	logger *logrus.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(items *services.ItemService, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{
		items:  items,
		logger: logger,
	}
}

// List returns items, newest first
// @Summary List found items
// @Description List every posted item, optionally filtered
// @Tags Items
// @Produce json
// @Param q query string false "Case-insensitive search over title, description and location"
// @Param category query string false "Category"
// @Param status query string false "Status (available, claimed, returned)"
// @Param postedBy query string false "Owner user ID"
// @Success 200 {object} models.ItemListResponse
// @Failure 400 {object} apperrors.ErrorResponse "Invalid status"
// @Router /items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	filter := models.ItemFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Status:   models.ItemStatus(c.Query("status")),
		PostedBy: c.Query("postedBy"),
	}

	items, err := h.items.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ItemListResponse{Items: items, Total: len(items)})
}

// Get returns a single item
// @Summary Get found item
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.ItemResponse
// @Failure 404 {object} apperrors.ErrorResponse "Item not found"
// @Router /items/{id} [get]
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	item, err := h.items.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ItemResponse{Item: item})
}

// Create posts a new item owned by the caller
// @Summary Post found item
// @Tags Items
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body models.CreateItemRequest true "Item"
// @Param Idempotency-Key header string false "Idempotency key (UUID)"
// @Success 201 {object} models.ItemResponse
// @Failure 400 {object} apperrors.ErrorResponse "Missing fields or unknown category"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthenticated"
// @Router /items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var req models.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	item, err := h.items.Create(c.UserContext(), middleware.GetIdentity(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.ItemResponse{Item: item})
}

// UpdateStatus changes the status of an item the caller owns
// @Summary Update item status
// @Tags Items
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Item ID"
// @Param request body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.ItemResponse
// @Failure 400 {object} apperrors.ErrorResponse "Invalid status"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthenticated"
// @Failure 404 {object} apperrors.ErrorResponse "Item not found or not owned by caller"
// @Router /items/{id}/status [patch]
func (h *ItemHandler) UpdateStatus(c *fiber.Ctx) error {
	var req models.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	item, err := h.items.UpdateStatus(c.UserContext(), middleware.GetIdentity(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ItemResponse{Item: item})
}

// Delete removes an item the caller owns
// @Summary Delete found item
// @Tags Items
// @Produce json
// @Security Bearer
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthenticated"
// @Failure 404 {object} apperrors.ErrorResponse "Item not found or not owned by caller"
// @Router /items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.items.Delete(c.UserContext(), middleware.GetIdentity(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
