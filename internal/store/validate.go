package store

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minPasswordLen = 6
	minNameLen     = 2
	dateLayout     = "2006-01-02"
)

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegistration checks an already-normalized email and trimmed name.
func validateRegistration(email, password, name string) error {
	if !emailRx.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	if utf8.RuneCountInString(name) < minNameLen {
		return ErrInvalidName
	}
	return nil
}

// ValidDate reports whether date is a well-formed YYYY-MM-DD string.
func ValidDate(date string) bool {
	_, err := time.Parse(dateLayout, date)
	return err == nil
}
