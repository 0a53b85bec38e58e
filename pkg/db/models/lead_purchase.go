package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/enums"
)

// LeadPurchase records a vendor unlocking a lead. The (lead_id, vendor_id)
// unique index is what makes repeat purchases a no-op.
type LeadPurchase struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey"`
	LeadID        uuid.UUID            `gorm:"column:lead_id;type:uuid;not null;uniqueIndex:idx_lead_purchases_lead_vendor"`
	VendorID      uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:idx_lead_purchases_lead_vendor"`
	Method        enums.PurchaseMethod `gorm:"column:method;type:text;not null"`
	AmountPaid    int64                `gorm:"column:amount_paid;not null;default:0"`
	CreditsSpent  int                  `gorm:"column:credits_spent;not null;default:0"`
	TransactionID *uuid.UUID           `gorm:"column:transaction_id;type:uuid"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (p *LeadPurchase) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
