package leads

import (
	"regexp"
	"strings"

	"github.com/utsavhq/utsav-backend/pkg/enums"
)

// IOSUserTag is attached to inquiries submitted from Apple devices.
const IOSUserTag = "iOS User"

var (
	mobilePattern = regexp.MustCompile(`(?i)mobile`)
	tabletPattern = regexp.MustCompile(`(?i)tablet|ipad`)
	iosPattern    = regexp.MustCompile(`(?i)iphone|ipad|macintosh`)
)

// DetectDevice classifies the submitting device from the User-Agent header.
// Mobile is matched before tablet, so an iPad agent that also claims "Mobile"
// counts as mobile.
func DetectDevice(userAgent string) enums.DeviceType {
	if strings.TrimSpace(userAgent) == "" {
		return enums.DeviceTypeUnknown
	}
	switch {
	case mobilePattern.MatchString(userAgent):
		return enums.DeviceTypeMobile
	case tabletPattern.MatchString(userAgent):
		return enums.DeviceTypeTablet
	default:
		return enums.DeviceTypeDesktop
	}
}

// IsIOSDevice reports whether the User-Agent belongs to an Apple device;
// macOS counts, matching how the inquiry form tags its traffic.
func IsIOSDevice(userAgent string) bool {
	return iosPattern.MatchString(userAgent)
}
