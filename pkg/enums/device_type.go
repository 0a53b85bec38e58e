package enums

import (
	"fmt"
	"strings"
)

// DeviceType records the submitting device class derived from the User-Agent.
type DeviceType string

const (
	DeviceTypeMobile  DeviceType = "mobile"
	DeviceTypeTablet  DeviceType = "tablet"
	DeviceTypeDesktop DeviceType = "desktop"
	DeviceTypeUnknown DeviceType = "unknown"
)

var validDeviceTypes = []DeviceType{
	DeviceTypeMobile,
	DeviceTypeTablet,
	DeviceTypeDesktop,
	DeviceTypeUnknown,
}

// IsValid reports whether the value is known.
func (d DeviceType) IsValid() bool {
	for _, candidate := range validDeviceTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeviceType converts raw input into a DeviceType.
func ParseDeviceType(value string) (DeviceType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validDeviceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device type %q", value)
}
