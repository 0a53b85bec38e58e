package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadBundle is a purchasable pack of prepaid lead credits.
type LeadBundle struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Credits     int       `gorm:"column:credits;not null"`
	Price       int64     `gorm:"column:price;not null"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *LeadBundle) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
