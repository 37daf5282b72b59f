package repository

import (
	"context"
	"time"

	"tooltrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerFilter narrows the history listing.
type LedgerFilter struct {
	ProductID *uuid.UUID
	Action    string
	Limit     int
	Offset    int
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts    int64 `json:"total_products"`
	ToolCount        int64 `json:"tool_count"`
	ConsumableCount  int64 `json:"consumable_count"`
	LowStockCount    int64 `json:"low_stock_count"`
	TotalUnits       int64 `json:"total_units"`
	ActiveLoans      int64 `json:"active_loans"`
	EmployeeCount    int64 `json:"employee_count"`
	DamagedLast30d   int64 `json:"damaged_last_30d"`
	MovementsLast24h int64 `json:"movements_last_24h"`
}

type LedgerRepository interface {
	CreateTx(tx *gorm.DB, entry *model.LedgerEntry) error
	List(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, int64, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, lowThreshold int) (*DashboardStats, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

func (r *ledgerRepo) CreateTx(tx *gorm.DB, entry *model.LedgerEntry) error {
	return tx.Create(entry).Error
}

func (r *ledgerRepo) List(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []model.LedgerEntry
	err := q.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate deltas per day
	rows, err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *ledgerRepo) GetDashboardStats(ctx context.Context, lowThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)
	now := time.Now()

	queries := []*gorm.DB{
		db.Model(&model.Product{}).Count(&stats.TotalProducts),
		db.Model(&model.Product{}).Where("category = ?", model.CategoryTool).Count(&stats.ToolCount),
		db.Model(&model.Product{}).Where("category = ?", model.CategoryConsumable).Count(&stats.ConsumableCount),
		db.Model(&model.Product{}).Where("stock < ?", lowThreshold).Count(&stats.LowStockCount),
		db.Model(&model.Product{}).Select("COALESCE(SUM(stock), 0)").Scan(&stats.TotalUnits),
		db.Model(&model.Loan{}).Where("status = ?", model.LoanActive).Count(&stats.ActiveLoans),
		db.Model(&model.Employee{}).Count(&stats.EmployeeCount),
		db.Model(&model.DamageLog{}).Where("created_at >= ?", now.AddDate(0, 0, -30)).
			Select("COALESCE(SUM(quantity), 0)").Scan(&stats.DamagedLast30d),
		db.Model(&model.LedgerEntry{}).Where("created_at >= ? AND delta <> 0", now.Add(-24*time.Hour)).
			Count(&stats.MovementsLast24h),
	}
	for _, q := range queries {
		if q.Error != nil {
			return nil, q.Error
		}
	}
	return &stats, nil
}
