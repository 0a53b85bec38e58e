package enums

import (
	"fmt"
	"strings"
)

// LeadCategory is the pricing tier assigned to a lead at intake.
type LeadCategory string

const (
	LeadCategoryStandard LeadCategory = "standard"
	LeadCategoryPremium  LeadCategory = "premium"
	LeadCategoryElite    LeadCategory = "elite"
)

var validLeadCategories = []LeadCategory{
	LeadCategoryStandard,
	LeadCategoryPremium,
	LeadCategoryElite,
}

// String implements fmt.Stringer.
func (c LeadCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c LeadCategory) IsValid() bool {
	for _, candidate := range validLeadCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseLeadCategory converts raw input into a LeadCategory.
func ParseLeadCategory(value string) (LeadCategory, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validLeadCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead category %q", value)
}
