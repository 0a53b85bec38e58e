package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/utsavhq/utsav-backend/pkg/db/types"
	"github.com/utsavhq/utsav-backend/pkg/enums"
)

// Vendor is the purchasing identity. WalletBalance and LeadCredits are the two
// spendable balances; LegacyLeadCredits holds the old tiered shape until the
// one-time migration folds it into LeadCredits.
type Vendor struct {
	ID                uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	Name              string                       `gorm:"type:text;not null"`
	Email             string                       `gorm:"type:text;not null;uniqueIndex"`
	Phone             *string                      `gorm:"column:phone"`
	PasswordHash      string                       `gorm:"column:password_hash;not null"`
	Role              enums.ActorRole              `gorm:"column:role;type:text;not null;default:'vendor'"`
	WalletBalance     int64                        `gorm:"column:wallet_balance;not null;default:0"`
	LeadCredits       int                          `gorm:"column:lead_credits;not null;default:0"`
	LegacyLeadCredits *dbtypes.LegacyCreditBalance `gorm:"column:legacy_lead_credits;type:jsonb"`
	IsActive          bool                         `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Vendor) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
