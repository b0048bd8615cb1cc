package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize parses a raw phone number and returns it in E.164 format.
// defaultRegion is the ISO 3166-1 alpha-2 country used when the number
// carries no country code.
func Normalize(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty phone number")
	}

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", raw)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeOrKeep normalizes when possible and falls back to the trimmed
// input when not. Imports use this so a messy phone column never blocks
// a row.
func NormalizeOrKeep(raw, defaultRegion string) string {
	normalized, err := Normalize(raw, defaultRegion)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return normalized
}

// IsValid reports whether the raw input parses to a valid number.
func IsValid(raw, defaultRegion string) bool {
	_, err := Normalize(raw, defaultRegion)
	return err == nil
}
