// Package vin validates vehicle identification numbers.
package vin

import (
	"regexp"
	"strings"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
)

// Length is the number of characters in a VIN.
const Length = 17

var pattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// Normalize upper-cases and trims a VIN.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Parse normalizes raw and checks it against the restricted alphabet
// (uppercase alphanumerics without I, O and Q).
func Parse(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperr.NewValidationError("VIN is required")
	}
	v := Normalize(raw)
	if !pattern.MatchString(v) {
		return "", apperr.NewValidationError("VIN must be exactly 17 alphanumeric characters (excluding I, O, Q)")
	}
	return v, nil
}

// CheckLength is the weaker check used for public decoding: any 17 characters.
func CheckLength(raw string) error {
	if raw == "" {
		return apperr.NewValidationError("VIN is required")
	}
	if len([]rune(raw)) != Length {
		return apperr.NewValidationError("VIN must be 17 characters")
	}
	return nil
}
