package leads

import (
	"strings"
	"testing"

	"github.com/utsavhq/utsav-backend/pkg/enums"
)

func TestRedactMessageDigitRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		leaked  string
	}{
		{"plain run", "call me on 9876543210 please", "9876543210"},
		{"separated run", "reach me at 98765 43210 anytime", "43210"},
		{"dashed run", "my number is 987-654-3210", "654"},
		{"international", "call +91 98765 43210", "98765"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactMessage(tc.message)
			if strings.Contains(got, tc.leaked) {
				t.Fatalf("digits leaked through: %q", got)
			}
			if !strings.Contains(got, redactedPlaceholder) {
				t.Fatalf("expected placeholder in %q", got)
			}
		})
	}
}

func TestRedactMessageKeepsShortNumbers(t *testing.T) {
	t.Parallel()

	message := "we expect 250 guests and a budget of 500000"
	if got := RedactMessage(message); got != message {
		t.Fatalf("short numbers should survive, got %q", got)
	}
}

func TestRedactMessageNumberWords(t *testing.T) {
	t.Parallel()

	message := "call me on nine eight seven six five four three two one zero thanks"
	got := RedactMessage(message)
	if strings.Contains(got, "nine eight") {
		t.Fatalf("spelled-out number leaked through: %q", got)
	}
	if !strings.Contains(got, redactedPlaceholder) {
		t.Fatalf("expected placeholder in %q", got)
	}
	if !strings.Contains(got, "thanks") {
		t.Fatalf("surrounding text should survive: %q", got)
	}
}

func TestRedactMessageShortNumberWordRunSurvives(t *testing.T) {
	t.Parallel()

	message := "table for two at seven"
	if got := RedactMessage(message); got != message {
		t.Fatalf("short number-word runs should survive, got %q", got)
	}
}

func TestDetectDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		userAgent string
		want      enums.DeviceType
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148", enums.DeviceTypeMobile},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36", enums.DeviceTypeMobile},
		// An iPad agent claiming "Mobile" counts as mobile; only the
		// desktop-mode iPad agent is a tablet.
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Mobile/15E148", enums.DeviceTypeMobile},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Safari/605.1.15", enums.DeviceTypeTablet},
		{"Mozilla/5.0 (Linux; Android 14) Tablet Safari/537.36", enums.DeviceTypeTablet},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", enums.DeviceTypeDesktop},
		{"", enums.DeviceTypeUnknown},
	}
	for _, tc := range tests {
		if got := DetectDevice(tc.userAgent); got != tc.want {
			t.Errorf("DetectDevice(%q) = %v, want %v", tc.userAgent, got, tc.want)
		}
	}
}

func TestIsIOSDevice(t *testing.T) {
	t.Parallel()

	if !IsIOSDevice("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)") {
		t.Error("iPhone agent should be iOS")
	}
	if !IsIOSDevice("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15") {
		t.Error("Mac agent should be tagged iOS")
	}
	if IsIOSDevice("Mozilla/5.0 (Linux; Android 14; Pixel 8)") {
		t.Error("Android agent should not be iOS")
	}
}
