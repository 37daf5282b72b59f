package handler

import (
	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MappingHandler struct {
	service service.MappingService
}

func NewMappingHandler(s service.MappingService) *MappingHandler {
	return &MappingHandler{service: s}
}

// CreateMapping maps a supplier code to a product.
// POST /api/v1/codes
func (h *MappingHandler) CreateMapping(c *fiber.Ctx) error {
	var req service.CreateMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	mapping, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mapping)
}

type updateCodeRequest struct {
	Code string `json:"code"`
}

// UpdateCode renames a supplier code.
// PUT /api/v1/codes/:id
func (h *MappingHandler) UpdateCode(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid mapping ID")
	}
	var req updateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	mapping, err := h.service.UpdateCode(c.UserContext(), id, req.Code)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(mapping)
}

type reassignRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

// Reassign points a supplier code at another product.
// PUT /api/v1/codes/:id/product
func (h *MappingHandler) Reassign(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid mapping ID")
	}
	var req reassignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	mapping, err := h.service.Reassign(c.UserContext(), id, req.ProductID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(mapping)
}

func (h *MappingHandler) DeleteMapping(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid mapping ID")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier code deleted"})
}
