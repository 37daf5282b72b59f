package handler

import (
	"strconv"

	"tooltrack/internal/repository"
	"tooltrack/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DashboardHandler struct {
	service service.DashboardService
	ledger  service.LedgerService
}

func NewDashboardHandler(s service.DashboardService, l service.LedgerService) *DashboardHandler {
	return &DashboardHandler{service: s, ledger: l}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}

// GetHistory pages through ledger entries, newest first.
// GET /api/v1/history?product_id=&action=&limit=&offset=
func (h *DashboardHandler) GetHistory(c *fiber.Ctx) error {
	filter := repository.LedgerFilter{
		Action: c.Query("action"),
		Limit:  c.QueryInt("limit", 100),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "Invalid product ID")
		}
		filter.ProductID = &id
	}
	entries, total, err := h.ledger.History(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": entries, "total": total})
}
