package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger actions.
const (
	ActionManualAdjust   = "manual adjustment"
	ActionBulkAudit      = "bulk scan audit"
	ActionInvoiceImport  = "invoice import"
	ActionSheetImport    = "spreadsheet import"
	ActionLoanCheckout   = "loan checkout"
	ActionConsumption    = "consumption"
	ActionLoanReturn     = "loan return"
	ActionDamageReport   = "damage report"
	ActionProductCreated = "product created"
	ActionProductEdited  = "product edited"
	ActionProductDeleted = "product deleted"
)

var ErrLedgerImmutable = errors.New("ledger entries are append-only")

// LedgerEntry is one immutable line of stock history.
// ProductID carries no foreign key so the entry outlives the product;
// ProductCode and ProductDescription are snapshots taken at write time.
type LedgerEntry struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID          *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	ProductCode        string     `gorm:"type:varchar(100)" json:"product_code"`
	ProductDescription string     `gorm:"type:varchar(255)" json:"product_description"`
	Action             string     `gorm:"type:varchar(50);not null;index" json:"action"`
	Description        string     `gorm:"type:text" json:"description"`
	Delta              int        `gorm:"not null" json:"delta"`
	StockBefore        int        `gorm:"not null" json:"stock_before"`
	StockAfter         int        `gorm:"not null" json:"stock_after"`
	Actor              string     `gorm:"type:varchar(255);not null" json:"actor"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *LedgerEntry) BeforeUpdate(tx *gorm.DB) error { return ErrLedgerImmutable }

func (e *LedgerEntry) BeforeDelete(tx *gorm.DB) error { return ErrLedgerImmutable }
