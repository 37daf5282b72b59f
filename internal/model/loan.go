package model

import (
	"time"

	"github.com/google/uuid"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanConsumed LoanStatus = "consumed"
	LoanReturned LoanStatus = "returned"
)

// Loan records one unit of a product handed to an employee.
// Tools start active and end returned; consumables are consumed on checkout.
type Loan struct {
	BaseModel
	ProductID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	EmployeeID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"employee_id"`
	Status             LoanStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Quantity           int        `gorm:"not null;default:1" json:"quantity"`
	CheckedOutAt       time.Time  `gorm:"not null" json:"checked_out_at"`
	ReturnedAt         *time.Time `json:"returned_at,omitempty"`
	ProductCode        string     `gorm:"type:varchar(100)" json:"product_code"`
	ProductDescription string     `gorm:"type:varchar(255)" json:"product_description"`
	HolderName         string     `gorm:"type:varchar(255)" json:"holder_name"`
}
