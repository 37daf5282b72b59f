package handler

import (
	"bytes"
	"fmt"
	"time"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"
	"tooltrack/internal/service"
	"tooltrack/internal/spreadsheet"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	inventory service.InventoryService
	mappings  service.MappingService
	ledger    service.LedgerService
}

func NewProductHandler(inv service.InventoryService, m service.MappingService, l service.LedgerService) *ProductHandler {
	return &ProductHandler{inventory: inv, mappings: m, ledger: l}
}

// GetProducts lists products.
// GET /api/v1/products?filter=all|tools|consumables|low&search=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter(c.Query("filter", string(repository.FilterAll)))
	products, err := h.inventory.GetProducts(c.UserContext(), filter, c.Query("search"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.inventory.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	product, err := h.inventory.CreateProduct(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	updated, err := h.inventory.UpdateProduct(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.inventory.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

type bulkDeleteRequest struct {
	Filter repository.ProductFilter `json:"filter"`
}

// BulkDelete removes every product matching the filter, one transaction each.
// POST /api/v1/products/bulk-delete
func (h *ProductHandler) BulkDelete(c *fiber.Ctx) error {
	var req bulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	res, err := h.inventory.BulkDelete(c.UserContext(), req.Filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *ProductHandler) ToggleCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.inventory.ToggleCategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": product})
}

// GetCodes lists the supplier codes mapped to a product.
func (h *ProductHandler) GetCodes(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	codes, err := h.mappings.ListByProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(codes)
}

type adjustRequest struct {
	Delta       int    `json:"delta"`
	Description string `json:"description"`
}

// AdjustStock applies a manual signed delta.
// POST /api/v1/products/:id/adjust
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	entry, err := h.ledger.ApplyDelta(c.UserContext(), service.DeltaRequest{
		ProductID:   id,
		Delta:       req.Delta,
		Action:      model.ActionManualAdjust,
		Description: req.Description,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// Import loads an .xlsx upload (form field "file").
// POST /api/v1/products/import
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "File is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "Cannot open file")
	}
	defer f.Close()

	rows, err := spreadsheet.ReadProducts(f)
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.inventory.ImportRows(c.UserContext(), rows)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

// Export streams the filtered catalog as .xlsx.
// GET /api/v1/products/export?filter=
func (h *ProductHandler) Export(c *fiber.Ctx) error {
	filter := repository.ProductFilter(c.Query("filter", string(repository.FilterAll)))
	products, err := h.inventory.GetProducts(c.UserContext(), filter, "")
	if err != nil {
		return fail(c, err)
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteProducts(&buf, products); err != nil {
		return fail(c, err)
	}
	name := fmt.Sprintf("inventory_%s_%s.xlsx", filter, time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, spreadsheet.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(buf.Bytes())
}
