package handler

import (
	"tooltrack/internal/model"
	"tooltrack/internal/repository"
	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LoanHandler struct {
	service service.LoanService
}

func NewLoanHandler(s service.LoanService) *LoanHandler {
	return &LoanHandler{service: s}
}

// GetLoans lists loans.
// GET /api/v1/loans?status=&employee_id=&product_id=
func (h *LoanHandler) GetLoans(c *fiber.Ctx) error {
	filter := repository.LoanFilter{Status: model.LoanStatus(c.Query("status"))}
	if v := c.Query("employee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "Invalid employee ID")
		}
		filter.EmployeeID = &id
	}
	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "Invalid product ID")
		}
		filter.ProductID = &id
	}
	loans, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(loans)
}

// Checkout hands one unit to an employee.
// POST /api/v1/loans
func (h *LoanHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	loan, err := h.service.Checkout(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(loan)
}

// Return closes an active loan.
// POST /api/v1/loans/:id/return
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid loan ID")
	}
	loan, err := h.service.Return(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(loan)
}
