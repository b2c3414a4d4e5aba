package util

import (
	"fmt"
	"regexp"
)

// maximum accepted amount in cents (one hundred million units)
const maxAmountCents = int64(100_000_000) * 100

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateAmount checks a transaction amount in cents (must be positive and
// below the cap).
func ValidateAmount(cents int64) error {
	if cents <= 0 {
		return fmt.Errorf("amount must be positive, got %d", cents)
	}
	if cents >= maxAmountCents {
		return fmt.Errorf("amount too large, got %d", cents)
	}
	return nil
}

// ValidateColor checks a display color (must be #RRGGBB).
func ValidateColor(color string) error {
	if color == "" {
		return fmt.Errorf("color is empty")
	}
	if !colorRe.MatchString(color) {
		return fmt.Errorf("invalid color %q, want #RRGGBB", color)
	}
	return nil
}
