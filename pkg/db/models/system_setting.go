package models

import (
	"encoding/json"
	"time"
)

// SystemSetting is a keyed jsonb configuration row, e.g. "lead_costs".
type SystemSetting struct {
	Key       string          `gorm:"column:key;primaryKey"`
	Value     json.RawMessage `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
