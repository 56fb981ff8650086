package utils

import "strings"

// NormalizePhone strips everything but digits so numbers entered with
// masks, spaces or country prefixes compare equal.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	// drop the Brazilian country code when present
	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		digits = digits[2:]
	}
	return digits
}
