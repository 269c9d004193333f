package auth

import (
	"regexp"
	"strings"
)

// MaxEmailLength is the longest accepted address.
const MaxEmailLength = 254

var emailRe = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// ValidEmail reports whether email is a plausible address.
func ValidEmail(email string) bool {
	return len(email) <= MaxEmailLength && emailRe.MatchString(email)
}

// NormalizeEmail lowercases and trims an address for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
