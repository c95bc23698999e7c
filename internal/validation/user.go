// Package validation holds input rules shared by the services.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinPasswordLen is the shortest accepted password
	MinPasswordLen = 8
	// MaxPasswordLen is the bcrypt input limit in bytes
	MaxPasswordLen = 72
	// MaxEmailLen caps stored addresses
	MaxEmailLen = 255
	// MaxFullNameLen caps display names
	MaxFullNameLen = 255
)

// ValidateEmail accepts a bare RFC 5322 address without a display name.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("email %q is not a valid address", email)
	}

	return nil
}

// ValidatePassword requires 8-72 bytes with at least one letter and one digit.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

// ValidateFullName requires 1-255 characters that are not all whitespace.
func ValidateFullName(name string) error {
	return validateText("full name", name, 1, MaxFullNameLen)
}

// validateText checks rune length bounds of a trimmed value.
func validateText(field, value string, minLen, maxLen int) error {
	trimmed := strings.TrimSpace(value)
	if minLen > 0 && trimmed == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}

	n := utf8.RuneCountInString(value)
	if n < minLen {
		return fmt.Errorf("%s must be at least %d characters long", field, minLen)
	}
	if n > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", field, maxLen)
	}

	return nil
}
