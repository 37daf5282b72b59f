package service

import (
	"context"
	"time"

	"tooltrack/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	ledgerRepo   repository.LedgerRepository
	lowThreshold int
}

func NewDashboardService(lRepo repository.LedgerRepository, lowThreshold int) DashboardService {
	return &dashboardService{ledgerRepo: lRepo, lowThreshold: lowThreshold}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 || days > 365 {
		days = 7
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.ledgerRepo.GetStockMovement(ctx, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.ledgerRepo.GetDashboardStats(ctx, s.lowThreshold)
}
