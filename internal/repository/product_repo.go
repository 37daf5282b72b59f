package repository

import (
	"context"

	"tooltrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter selects products for listing, export and bulk delete.
type ProductFilter string

const (
	FilterAll         ProductFilter = "all"
	FilterTools       ProductFilter = "tools"
	FilterConsumables ProductFilter = "consumables"
	FilterLowStock    ProductFilter = "low"
)

// Valid reports whether f names a known filter.
func (f ProductFilter) Valid() bool {
	switch f {
	case FilterAll, FilterTools, FilterConsumables, FilterLowStock:
		return true
	}
	return false
}

type ProductRepository interface {
	FindAll(ctx context.Context, filter ProductFilter, search string) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindIDs(ctx context.Context, filter ProductFilter) ([]uuid.UUID, error)

	// Transaction-bound helpers take the caller's tx.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindByCodeTx(tx *gorm.DB, code string) (*model.Product, error)
	FindByShortCodeTx(tx *gorm.DB, code string) (*model.Product, error)
	CreateTx(tx *gorm.DB, product *model.Product) error
	UpdateTx(tx *gorm.DB, product *model.Product) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type productRepo struct {
	db           *gorm.DB
	lowThreshold int
}

func NewProductRepo(db *gorm.DB, lowThreshold int) ProductRepository {
	return &productRepo{db: db, lowThreshold: lowThreshold}
}

func (r *productRepo) scoped(q *gorm.DB, filter ProductFilter) *gorm.DB {
	switch filter {
	case FilterTools:
		return q.Where("category = ?", model.CategoryTool)
	case FilterConsumables:
		return q.Where("category = ?", model.CategoryConsumable)
	case FilterLowStock:
		return q.Where("stock < ?", r.lowThreshold)
	}
	return q
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter, search string) ([]model.Product, error) {
	var products []model.Product
	q := r.scoped(r.db.WithContext(ctx).Preload("SupplierCodes"), filter)
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("code LIKE ? OR short_code LIKE ? OR UPPER(description) LIKE ?", like, like, like)
	}
	err := q.Order("description ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("SupplierCodes").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindIDs(ctx context.Context, filter ProductFilter) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.scoped(r.db.WithContext(ctx).Model(&model.Product{}), filter).Pluck("id", &ids).Error
	return ids, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockByIDTx loads the product with SELECT ... FOR UPDATE so concurrent
// writers to the same row queue behind the caller's transaction.
func (r *productRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByCodeTx(tx *gorm.DB, code string) (*model.Product, error) {
	var product model.Product
	if err := tx.Where("code = ?", code).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByShortCodeTx returns the oldest product carrying the short code.
func (r *productRepo) FindByShortCodeTx(tx *gorm.DB, code string) (*model.Product, error) {
	var product model.Product
	err := tx.Where("short_code = ?", code).Order("created_at ASC").First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) CreateTx(tx *gorm.DB, product *model.Product) error {
	return tx.Omit("SupplierCodes").Create(product).Error
}

// UpdateTx saves the catalog fields. Stock is written only by UpdateStock.
func (r *productRepo) UpdateTx(tx *gorm.DB, product *model.Product) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"code":        product.Code,
			"short_code":  product.ShortCode,
			"description": product.Description,
			"category":    product.Category,
			"updated_by":  product.UpdatedBy,
		}).Error
}

// UpdateStock menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
