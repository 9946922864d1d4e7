package sqlite

import (
	"strings"

	"github.com/imsgstats/imsgstats/pkg/util"
)

// DefaultCountryCode is used for numbers stored without one.
const DefaultCountryCode = "1"

// NormalizePhoneNumber rewrites an AddressBook number into the "+<cc><digits>" form
// that chat.db uses for handles.
//
//	"+1 (555) 123-4567" -> "+15551234567"
//	"(555) 123-4567"    -> "+15551234567"
//	"+447700900123"     -> "+447700900123"
//	"555-123-4567"      -> "+15551234567"
//
// Numbers with no digits are returned trimmed and unchanged.
func NormalizePhoneNumber(number string) string {
	number = strings.TrimSpace(number)
	if util.DigitsOnly(number, false) == "" {
		return number
	}

	if !strings.Contains(number, "(") {
		if strings.HasPrefix(number, "+") {
			return "+" + util.DigitsOnly(number, false)
		}
		digits := util.DigitsOnly(number, false)
		if len(digits) == 11 && strings.HasPrefix(digits, DefaultCountryCode) {
			return "+" + digits
		}
		return "+" + DefaultCountryCode + digits
	}

	prefix, _, _ := strings.Cut(number, "(")
	country := util.DigitsOnly(prefix, false)
	if country == "" {
		country = DefaultCountryCode
	}
	rest := number[strings.LastIndex(number, "(")+1:]
	return "+" + country + util.DigitsOnly(rest, false)
}
