package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/enums"
)

// Lead is a customer inquiry listed on the marketplace. Contact fields hold the
// raw values; masking happens at read time for vendors who have not purchased.
type Lead struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey"`
	CustomerName     string             `gorm:"column:customer_name;not null"`
	Phone            string             `gorm:"column:phone;not null"`
	Email            string             `gorm:"column:email;not null"`
	EventDate        *time.Time         `gorm:"column:event_date"`
	City             string             `gorm:"column:city;index"`
	State            string             `gorm:"column:state"`
	GuestCount       int                `gorm:"column:guest_count;not null;default:0"`
	Budget           int64              `gorm:"column:budget;not null;default:0"`
	Message          string             `gorm:"column:message;type:text"`
	PackageID        *uuid.UUID         `gorm:"column:package_id;type:uuid"`
	BusinessCategory string             `gorm:"column:business_category;not null;default:'General Inquiry'"`
	Category         enums.LeadCategory `gorm:"column:category;type:text;not null"`
	Price            int64              `gorm:"column:price;not null"`
	Source           enums.LeadSource   `gorm:"column:source;type:text;not null;default:'website'"`
	DeviceType       enums.DeviceType   `gorm:"column:device_type;type:text;not null;default:'unknown'"`
	Tags             pq.StringArray     `gorm:"column:tags;type:text[]"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *Lead) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
