package handler

import (
	"errors"

	"tooltrack/internal/cfdi"
	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InvoiceHandler struct {
	service service.InvoiceService
}

func NewInvoiceHandler(s service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: s}
}

// Import applies an invoice given as JSON.
// POST /api/v1/invoices/import
func (h *InvoiceHandler) Import(c *fiber.Ctx) error {
	var req service.InvoiceInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	res, err := h.service.Import(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

// ImportXML applies an uploaded CFDI document (form field "file").
// POST /api/v1/invoices/import-xml
func (h *InvoiceHandler) ImportXML(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "File is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "Cannot open file")
	}
	defer f.Close()

	in, err := cfdi.Parse(f)
	if errors.Is(err, cfdi.ErrNotCFDI) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return fail(c, err)
	}
	res, err := h.service.Import(c.UserContext(), *in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

type resolveRequest struct {
	Decisions []service.MappingDecision `json:"decisions"`
}

// Resolve applies the operator's decisions for unresolved lines.
// POST /api/v1/invoices/resolve
func (h *InvoiceHandler) Resolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	res, err := h.service.ResolveUnmatched(c.UserContext(), req.Decisions)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}
