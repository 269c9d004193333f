package auth

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 12

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile("[!@#$%^&*(),.?\":{}|<>\\[\\]\\\\/~`+=_-]")
	commonRe  = regexp.MustCompile(`(?i)123|abc|qwe|password|admin`)
)

// PasswordChecks lists which strength criteria a password meets.
type PasswordChecks struct {
	Length           bool `json:"length"`
	Uppercase        bool `json:"uppercase"`
	Lowercase        bool `json:"lowercase"`
	Number           bool `json:"number"`
	SpecialChar      bool `json:"special_char"`
	NoCommonPatterns bool `json:"no_common_patterns"`
}

// PasswordStrength is the result of CheckPassword.
type PasswordStrength struct {
	Valid  bool           `json:"valid"`
	Label  string         `json:"strength"`
	Checks PasswordChecks `json:"checks"`
}

// CheckPassword grades a password against the six criteria. Only a password
// meeting all six is valid.
func CheckPassword(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{Label: "Invalid"}
	}
	c := PasswordChecks{
		Length:           len([]rune(password)) >= MinPasswordLength,
		Uppercase:        upperRe.MatchString(password),
		Lowercase:        lowerRe.MatchString(password),
		Number:           digitRe.MatchString(password),
		SpecialChar:      specialRe.MatchString(password),
		NoCommonPatterns: !hasRepeatedRun(password, 3) && !commonRe.MatchString(password),
	}

	passed := 0
	for _, ok := range []bool{c.Length, c.Uppercase, c.Lowercase, c.Number, c.SpecialChar, c.NoCommonPatterns} {
		if ok {
			passed++
		}
	}
	return PasswordStrength{Valid: passed == 6, Label: strengthLabel(passed), Checks: c}
}

// Missing describes the unmet criteria, for error messages.
func (s PasswordStrength) Missing() string {
	var failed []string
	c := s.Checks
	if !c.Length {
		failed = append(failed, "at least 12 characters")
	}
	if !c.Uppercase {
		failed = append(failed, "an uppercase letter")
	}
	if !c.Lowercase {
		failed = append(failed, "a lowercase letter")
	}
	if !c.Number {
		failed = append(failed, "a number")
	}
	if !c.SpecialChar {
		failed = append(failed, "a special character")
	}
	if !c.NoCommonPatterns {
		failed = append(failed, "no common patterns or repeated characters")
	}
	return strings.Join(failed, ", ")
}

func strengthLabel(passed int) string {
	switch passed {
	case 6:
		return "Very Strong"
	case 5:
		return "Strong"
	case 4:
		return "Good"
	case 3:
		return "Fair"
	case 2:
		return "Weak"
	default:
		return "Very Weak"
	}
}

// hasRepeatedRun reports whether some character repeats n or more times in a
// row.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for i, r := range s {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}
