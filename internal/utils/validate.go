package utils

import "regexp"

var (
	mobileRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe  = regexp.MustCompile(`^[+]?[\d\s-]+$`)
)

// ValidMobile reports whether value looks like an E.164-style mobile number.
func ValidMobile(value string) bool {
	return mobileRe.MatchString(value)
}

// ValidEmail reports whether value looks like an email address.
func ValidEmail(value string) bool {
	return emailRe.MatchString(value)
}

// ValidContactPhone reports whether value is an acceptable contact number.
// Looser than ValidMobile: spaces and hyphens are allowed.
func ValidContactPhone(value string) bool {
	return value != "" && phoneRe.MatchString(value)
}
