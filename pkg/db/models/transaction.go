package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/enums"
)

// Transaction is a wallet ledger row. OrderID is a caller-supplied unique
// reference; the unique index doubles as the idempotency guard for top-ups.
type Transaction struct {
	ID          uuid.UUID               `gorm:"type:uuid;primaryKey"`
	VendorID    uuid.UUID               `gorm:"column:vendor_id;type:uuid;not null;index"`
	Type        enums.TransactionType   `gorm:"column:type;type:text;not null"`
	Status      enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'success'"`
	Gateway     enums.PaymentGateway    `gorm:"column:gateway;type:text;not null"`
	Currency    string                  `gorm:"column:currency;type:text;not null;default:'INR'"`
	Amount      int64                   `gorm:"column:amount;not null"`
	OrderID     string                  `gorm:"column:order_id;not null;uniqueIndex"`
	Description string                  `gorm:"column:description;type:text"`
	Meta        json.RawMessage         `gorm:"column:meta;type:jsonb"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
