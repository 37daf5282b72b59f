package handler

import (
	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	service service.AuditService
}

func NewAuditHandler(s service.AuditService) *AuditHandler {
	return &AuditHandler{service: s}
}

type previewRequest struct {
	Text string `json:"text"`
}

// Preview counts and resolves scanned codes without touching stock.
// POST /api/v1/audit/preview
func (h *AuditHandler) Preview(c *fiber.Ctx) error {
	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	preview, err := h.service.Preview(c.UserContext(), req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(preview)
}

type confirmRequest struct {
	Items []service.AuditItem `json:"items"`
}

// Confirm adds the previewed counts to stock. Every call applies again.
// POST /api/v1/audit/confirm
func (h *AuditHandler) Confirm(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	res, err := h.service.Confirm(c.UserContext(), req.Items)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}
