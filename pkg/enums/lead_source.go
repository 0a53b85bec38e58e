package enums

import (
	"fmt"
	"strings"
)

// LeadSource names the channel an inquiry arrived through.
type LeadSource string

const (
	LeadSourceWebsite  LeadSource = "website"
	LeadSourceReferral LeadSource = "referral"
	LeadSourceCampaign LeadSource = "campaign"
	LeadSourceManual   LeadSource = "manual"
)

var validLeadSources = []LeadSource{
	LeadSourceWebsite,
	LeadSourceReferral,
	LeadSourceCampaign,
	LeadSourceManual,
}

// IsValid reports whether the value is known.
func (s LeadSource) IsValid() bool {
	for _, candidate := range validLeadSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLeadSource converts raw input into a LeadSource.
func ParseLeadSource(value string) (LeadSource, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validLeadSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead source %q", value)
}
