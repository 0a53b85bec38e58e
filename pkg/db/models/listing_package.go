package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ListingPackage is a promotional visibility package vendors can browse.
type ListingPackage struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"type:text;not null"`
	Category     string         `gorm:"column:category;not null;default:'General Inquiry'"`
	Description  string         `gorm:"type:text"`
	Price        int64          `gorm:"column:price;not null"`
	DurationDays int            `gorm:"column:duration_days;not null;default:30"`
	Features     pq.StringArray `gorm:"column:features;type:text[]"`
	InquiryCount int            `gorm:"column:inquiry_count;not null;default:0"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *ListingPackage) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
