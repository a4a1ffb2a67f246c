package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMobile(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"local format", "0772123456", "772123456"},
		{"international prefix", "+256772123456", "772123456"},
		{"spaces and dashes", "256-772 123 456", "772123456"},
		{"already nine digits", "772123456", "772123456"},
		{"seven digits kept", "7123456", "7123456"},
		{"too short", "12345", ""},
		{"letters only", "call-me", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeMobile(tc.raw))
		})
	}
}

func TestNormalizeMobileEquivalence(t *testing.T) {
	// Every common way a guardian writes the same number must collapse to
	// one key for sibling matching.
	forms := []string{"0772123456", "+256772123456", "256 772 123456", "(0772) 123-456"}
	for _, f := range forms {
		assert.Equal(t, "772123456", NormalizeMobile(f))
	}
}
