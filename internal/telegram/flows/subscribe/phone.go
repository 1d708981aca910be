package subscribe

import (
	"regexp"
	"strings"
)

// Safaricom subscriber numbers in international form: 2547 plus 8 digits.
var subscriberNumberRe = regexp.MustCompile(`^2547\d{8}$`)

// SanitizePhone strips everything but digits, so "+254 712-345-678" and
// "254712345678" normalize to the same directory key.
func SanitizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidSubscriberNumber reports whether a sanitized phone can receive an
// M-Pesa payment prompt.
func IsValidSubscriberNumber(phone string) bool {
	return subscriberNumberRe.MatchString(phone)
}
