package util

import (
	"testing"
)

// TestValidateAmount_Positive accepts normal amounts.
func TestValidateAmount_Positive(t *testing.T) {
	testCases := []int64{1, 100, 10050, 999999999}

	for _, cents := range testCases {
		err := ValidateAmount(cents)
		if err != nil {
			t.Errorf("ValidateAmount(%d) error = %v, want nil", cents, err)
		}
	}
}

// TestValidateAmount_ZeroOrNegative rejects zero and negative amounts.
func TestValidateAmount_ZeroOrNegative(t *testing.T) {
	testCases := []int64{0, -1, -10000}

	for _, cents := range testCases {
		err := ValidateAmount(cents)
		if err == nil {
			t.Errorf("ValidateAmount(%d) error = nil, want error", cents)
		}
	}
}

// TestValidateAmount_TooLarge rejects amounts above the cap.
func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(100_000_000 * 100)

	if err == nil {
		t.Error("ValidateAmount(cap) error = nil, want error")
	}
}

// TestValidateColor accepts #RRGGBB only.
func TestValidateColor(t *testing.T) {
	for _, color := range []string{"#000000", "#ffffff", "#1A2b3C"} {
		if err := ValidateColor(color); err != nil {
			t.Errorf("ValidateColor(%q) error = %v, want nil", color, err)
		}
	}
	for _, color := range []string{"", "red", "#fff", "#12345", "#1234567", "123456"} {
		if err := ValidateColor(color); err == nil {
			t.Errorf("ValidateColor(%q) error = nil, want error", color)
		}
	}
}
