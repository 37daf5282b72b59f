package model

import "strings"

type Category string

const (
	CategoryTool       Category = "tool"
	CategoryConsumable Category = "consumable"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryTool || c == CategoryConsumable
}

// Other returns the opposite category, used by the toggle operation.
func (c Category) Other() Category {
	if c == CategoryTool {
		return CategoryConsumable
	}
	return CategoryTool
}

// toolKeywords mark descriptions of reusable equipment. Anything else
// imported without an explicit category is treated as a consumable.
var toolKeywords = []string{
	"TALADRO", "PULIDOR", "ESMERIL", "SOLDADORA", "MAQUINA",
	"EXTENSION", "PINZA", "LLAVE", "MARTILLO",
	"DRILL", "GRINDER", "WELDER", "WRENCH", "HAMMER", "PLIERS",
}

// InferCategory guesses a category from a free-text description.
func InferCategory(description string) Category {
	upper := strings.ToUpper(description)
	for _, kw := range toolKeywords {
		if strings.Contains(upper, kw) {
			return CategoryTool
		}
	}
	return CategoryConsumable
}

// Product is a canonical stock-keeping item.
// Code and ShortCode are always stored normalized.
type Product struct {
	BaseModel
	Code        string   `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	ShortCode   *string  `gorm:"type:varchar(100);index" json:"short_code,omitempty"`
	Description string   `gorm:"type:varchar(255);not null" json:"description"`
	Stock       int      `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Category    Category `gorm:"type:varchar(20);not null;default:'consumable'" json:"category"`

	// Relasi
	SupplierCodes []SupplierCode `gorm:"constraint:OnDelete:CASCADE" json:"supplier_codes,omitempty"`
}

// AllCodes lists the short code followed by every supplier code, without duplicates.
func (p *Product) AllCodes() []string {
	seen := make(map[string]bool)
	var codes []string
	if p.ShortCode != nil && *p.ShortCode != "" {
		codes = append(codes, *p.ShortCode)
		seen[*p.ShortCode] = true
	}
	for _, sc := range p.SupplierCodes {
		if !seen[sc.Code] {
			codes = append(codes, sc.Code)
			seen[sc.Code] = true
		}
	}
	return codes
}
