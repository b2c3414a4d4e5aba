package util

import (
	"fmt"
	"strconv"
	"strings"
)

// Amounts travel the API as decimal strings ("123.45") and are stored as
// int64 cents. Parsing goes through integer arithmetic so that two-decimal
// inputs never pick up float error.

// ParseAmount converts a decimal string to cents. At most two fractional
// digits are accepted.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(fracPart) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	if intPart == "" {
		intPart = "0"
	}

	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	cents := whole*100 + frac
	if neg {
		cents = -cents
	}
	return cents, nil
}

func digitsOnly(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// FormatAmount converts cents back to a two-decimal string.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
