package flow

import (
	"regexp"
	"time"
)

var phoneRe = regexp.MustCompile(`^(\+998|998)?\d{9}$`)

// ValidateDate reports whether text is a real calendar date in YYYY-MM-DD
// form. Any date is accepted; there is no past or future window.
func ValidateDate(text string) bool {
	_, err := time.Parse(time.DateOnly, text)
	return err == nil
}

// ValidatePhone reports whether text is nine digits with an optional 998 or
// +998 prefix.
func ValidatePhone(text string) bool {
	return phoneRe.MatchString(text)
}
