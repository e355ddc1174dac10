package utils

import "strings"

// NormalizePhone converts a free-form US phone number to E.164. Ten digits get
// the +1 country code; anything else keeps its digits behind a "+". Twilio
// rejects numbers without the leading "+".
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return raw
	}
	if len(d) == 10 {
		return "+1" + d
	}
	return "+" + d
}
