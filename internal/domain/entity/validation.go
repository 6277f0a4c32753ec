package entity

import (
	"fmt"
	"regexp"
)

// Email length bounds. The maximum follows RFC 5321; the minimum is the
// shortest plausible address (a@b.co).
const (
	minEmailLength = 6
	maxEmailLength = 254
)

// emailPattern is the same basic shape the subscribe form enforces client-side:
// no whitespace, exactly one @, at least one dot in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail validates an email address format and length.
// Returns a ValidationError describing the first rule that failed.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if len(email) < minEmailLength {
		return &ValidationError{
			Field:   "email",
			Message: fmt.Sprintf("email must be at least %d characters", minEmailLength),
		}
	}
	if len(email) > maxEmailLength {
		return &ValidationError{
			Field:   "email",
			Message: fmt.Sprintf("email must not exceed %d characters", maxEmailLength),
		}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}
