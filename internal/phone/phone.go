// Package phone normalizes the three historical phone storage formats
// (bare 10 digits, "91" prefixed, "+91" prefixed) into one canonical key.
// New writes store the canonical form only; reads keep probing all variants
// until legacy records are backfilled.
package phone

import (
	"strings"

	"pondy/classifieds/internal/apperr"
)

const canonicalLen = 10

// Canonicalize strips every non-digit character and keeps the last 10 digits.
// Inputs with fewer than 10 digits are rejected, never truncated.
func Canonicalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < canonicalLen {
		return "", apperr.InvalidPhoneFormat(raw)
	}
	return digits[len(digits)-canonicalLen:], nil
}

// Variants returns the canonical key plus the two legacy prefixed forms, for
// use in $in filters against stores holding records in any of the three formats.
func Variants(raw string) ([]string, error) {
	key, err := Canonicalize(raw)
	if err != nil {
		return nil, err
	}
	return []string{key, "91" + key, "+91" + key}, nil
}
