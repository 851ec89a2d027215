// Package validator provides input validation for the application
package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrRequired is returned when a required field is empty
	ErrRequired = errors.New("required field is empty")
	// ErrInvalidID is returned when an identifier is not a positive integer
	ErrInvalidID = errors.New("invalid id")
	// ErrMalformed is returned when request input cannot be parsed at all
	ErrMalformed = errors.New("malformed input")
)

// Required trims value and fails with ErrRequired when nothing is left
func Required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrRequired, field)
	}
	return value, nil
}

// ValidateID validates that an ID is positive
func ValidateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidID, id)
	}
	return nil
}

// ParseID parses a positive decimal identifier
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if err := ValidateID(id); err != nil {
		return 0, err
	}
	return id, nil
}

// OptionalID parses an optional identifier. Blank input yields nil.
func OptionalID(s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// IsValidation reports whether err was produced by this package
func IsValidation(err error) bool {
	return errors.Is(err, ErrRequired) || errors.Is(err, ErrInvalidID) || errors.Is(err, ErrMalformed)
}
