package leads

import (
	"regexp"
	"strings"
)

const (
	// MaskedPhone and MaskedEmail replace contact fields on marketplace
	// listings until the lead is purchased.
	MaskedPhone = "**********"
	MaskedEmail = "****@****.com"

	redactedPlaceholder = "[redacted]"
	minNumberWordRun    = 10
)

// digitRunPattern matches phone-number-like sequences: ten or more digits,
// optionally separated by spaces, dashes, dots, or parentheses.
var digitRunPattern = regexp.MustCompile(`\+?\d(?:[\s\-().]*\d){9,}`)

var numberWords = map[string]struct{}{
	"zero": {}, "one": {}, "two": {}, "three": {}, "four": {},
	"five": {}, "six": {}, "seven": {}, "eight": {}, "nine": {},
	"oh": {}, "double": {}, "triple": {},
}

// RedactMessage strips phone numbers hidden in free text before the inquiry is
// stored. Digit runs and long sequences of spelled-out number words are both
// replaced so the contact cannot be reached without buying the lead.
func RedactMessage(message string) string {
	if message == "" {
		return ""
	}
	redacted := digitRunPattern.ReplaceAllString(message, redactedPlaceholder)

	fields := strings.Fields(redacted)
	out := make([]string, 0, len(fields))
	run := 0
	collapse := func() {
		if run >= minNumberWordRun {
			out = append(out[:len(out)-run], redactedPlaceholder)
		}
		run = 0
	}
	for _, field := range fields {
		if isNumberWord(field) {
			out = append(out, field)
			run++
			continue
		}
		collapse()
		out = append(out, field)
	}
	collapse()
	return strings.Join(out, " ")
}

func isNumberWord(field string) bool {
	word := strings.ToLower(strings.Trim(field, ".,;:!?-"))
	_, ok := numberWords[word]
	return ok
}
