package utils

import "strings"

// NormalizePhone reduces a phone number to its digits. "11 98888-7777"
// and "(11) 98888 7777" normalize to the same key, which is what keeps
// a customer from being duplicated when agents format numbers
// differently across requests.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
