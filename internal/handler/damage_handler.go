package handler

import (
	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DamageHandler struct {
	service service.DamageService
}

func NewDamageHandler(s service.DamageService) *DamageHandler {
	return &DamageHandler{service: s}
}

func (h *DamageHandler) Report(c *fiber.Ctx) error {
	var req service.DamageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	damage, err := h.service.Report(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(damage)
}

// GetDamages returns a page of damage reports.
// GET /api/v1/damages?limit=&offset=
func (h *DamageHandler) GetDamages(c *fiber.Ctx) error {
	logs, total, err := h.service.List(c.UserContext(), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": logs, "total": total})
}
