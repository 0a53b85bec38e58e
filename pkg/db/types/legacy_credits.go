package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LegacyCreditBalance is the pre-migration tiered credit shape stored as jsonb.
// A nil/zero value means the vendor was never provisioned under the old model.
type LegacyCreditBalance struct {
	Standard int `json:"standard"`
	Premium  int `json:"premium"`
	Elite    int `json:"elite"`
}

func (b *LegacyCreditBalance) Scan(src any) error {
	if src == nil {
		*b = LegacyCreditBalance{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("LegacyCreditBalance: unsupported Scan type %T", src)
	}
}

func (b LegacyCreditBalance) Value() (driver.Value, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// IsZero reports whether every tier bucket is empty.
func (b LegacyCreditBalance) IsZero() bool {
	return b.Standard == 0 && b.Premium == 0 && b.Elite == 0
}

// Normalize converts the tiered buckets into flat credits using the given
// per-tier weights. Negative buckets contribute nothing.
func (b LegacyCreditBalance) Normalize(standardWeight, premiumWeight, eliteWeight int) int {
	total := 0
	if b.Standard > 0 {
		total += b.Standard * standardWeight
	}
	if b.Premium > 0 {
		total += b.Premium * premiumWeight
	}
	if b.Elite > 0 {
		total += b.Elite * eliteWeight
	}
	return total
}
