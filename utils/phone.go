package utils

import "strings"

// NormalizeMobile reduces a guardian phone number to a comparable form:
// digits only, last nine kept, so "+256 772-123456", "0772123456" and
// "772123456" all collapse to "772123456". Returns "" when fewer than
// seven digits remain, which callers treat as "no usable number".
func NormalizeMobile(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 7 {
		return ""
	}
	if len(digits) > 9 {
		digits = digits[len(digits)-9:]
	}
	return digits
}
