package repository

import (
	"context"

	"tooltrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplierCodeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierCode, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.SupplierCode, error)

	FindTx(tx *gorm.DB, supplierID, code string) (*model.SupplierCode, error)
	LockPairTx(tx *gorm.DB, supplierID, code string) error
	EnsureTx(tx *gorm.DB, mapping *model.SupplierCode) (*model.SupplierCode, bool, error)
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SupplierCode, error)
	UpdateTx(tx *gorm.DB, mapping *model.SupplierCode) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DeleteByProductTx(tx *gorm.DB, productID uuid.UUID) error
	RenameForProductTx(tx *gorm.DB, productID uuid.UUID, oldCode, newCode string) error
}

type supplierCodeRepo struct {
	db *gorm.DB
}

func NewSupplierCodeRepo(db *gorm.DB) SupplierCodeRepository {
	return &supplierCodeRepo{db}
}

func (r *supplierCodeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierCode, error) {
	var sc model.SupplierCode
	if err := r.db.WithContext(ctx).First(&sc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *supplierCodeRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.SupplierCode, error) {
	var codes []model.SupplierCode
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("supplier_id ASC, code ASC").
		Find(&codes).Error
	return codes, err
}

func (r *supplierCodeRepo) FindTx(tx *gorm.DB, supplierID, code string) (*model.SupplierCode, error) {
	var sc model.SupplierCode
	err := tx.Where("supplier_id = ? AND code = ?", supplierID, code).First(&sc).Error
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// LockPairTx serializes writers of one (supplier, code) pair for the rest of
// the transaction. The pair may not exist yet, so a row lock cannot be used;
// PostgreSQL gets a transaction-scoped advisory lock. SQLite already runs a
// single writer and needs nothing.
func (r *supplierCodeRepo) LockPairTx(tx *gorm.DB, supplierID, code string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", supplierID+"\x00"+code).Error
}

// EnsureTx inserts the mapping unless the pair is already mapped and returns
// the row that owns the pair. created is false when an existing row won.
func (r *supplierCodeRepo) EnsureTx(tx *gorm.DB, mapping *model.SupplierCode) (*model.SupplierCode, bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "supplier_id"}, {Name: "code"}},
		DoNothing: true,
	}).Create(mapping)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return mapping, true, nil
	}
	existing, err := r.FindTx(tx, mapping.SupplierID, mapping.Code)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *supplierCodeRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SupplierCode, error) {
	var sc model.SupplierCode
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *supplierCodeRepo) UpdateTx(tx *gorm.DB, mapping *model.SupplierCode) error {
	return tx.Model(&model.SupplierCode{}).
		Where("id = ?", mapping.ID).
		Updates(map[string]interface{}{
			"code":       mapping.Code,
			"product_id": mapping.ProductID,
			"updated_by": mapping.UpdatedBy,
		}).Error
}

func (r *supplierCodeRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.SupplierCode{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *supplierCodeRepo) DeleteByProductTx(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Where("product_id = ?", productID).Delete(&model.SupplierCode{}).Error
}

// RenameForProductTx rewrites the product's mappings that carry oldCode,
// skipping suppliers that already map newCode elsewhere.
func (r *supplierCodeRepo) RenameForProductTx(tx *gorm.DB, productID uuid.UUID, oldCode, newCode string) error {
	return tx.Exec(`UPDATE supplier_codes SET code = ?
		WHERE product_id = ? AND code = ?
		AND NOT EXISTS (
			SELECT 1 FROM supplier_codes s2
			WHERE s2.supplier_id = supplier_codes.supplier_id AND s2.code = ?
		)`, newCode, productID, oldCode, newCode).Error
}
