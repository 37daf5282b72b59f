package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DamageLog is an append-only report of broken or lost units.
type DamageLog struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID          uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductCode        string    `gorm:"type:varchar(100)" json:"product_code"`
	ProductDescription string    `gorm:"type:varchar(255)" json:"product_description"`
	Quantity           int       `gorm:"not null" json:"quantity"`
	Reason             string    `gorm:"type:text" json:"reason"`
	SpecificCode       string    `gorm:"type:varchar(100)" json:"specific_code"`
	ReportedBy         string    `gorm:"type:varchar(255);not null" json:"reported_by"`
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
}

func (d *DamageLog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
