package model

import "github.com/google/uuid"

// SpreadsheetSupplier is the pseudo-supplier that owns codes loaded from spreadsheets.
const SpreadsheetSupplier = "SPREADSHEET"

// SupplierCode maps a supplier's own code for an item onto a Product.
// (SupplierID, Code) is unique: one supplier code never points at two products.
type SupplierCode struct {
	BaseModel
	SupplierID string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_codes_pair,priority:1" json:"supplier_id"`
	Code       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_supplier_codes_pair,priority:2" json:"code"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
}
