package quiz

import (
	"fmt"
	"regexp"
)

// emailPart excludes @ and every Unicode space, not only RE2's ASCII \s.
const emailPart = `[^\s\v\p{Z}\x{FEFF}@]+`

var emailPattern = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)

// ValidationError describes a rejected user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail reports whether text looks like an email address.
func ValidateEmail(text string) bool {
	return emailPattern.MatchString(text)
}

// CheckEmail returns a ValidationError when text is empty or not an email.
func CheckEmail(text string) error {
	if text == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !ValidateEmail(text) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// FormatTime renders seconds as MM:SS.
func FormatTime(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
