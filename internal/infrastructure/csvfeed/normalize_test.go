package csvfeed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain decimal", "9.99", "9.99"},
		{"currency symbol", "$1234.50", "1234.5"},
		{"thousands separator", "$1,234.50", "1234.5"},
		{"leading whitespace", "  42.00", "42"},
		{"negative", "-5.25", "-5.25"},
		{"integer", "7", "7"},
		{"empty", "", "0"},
		{"nan", "NaN", "0"},
		{"letters only", "abc", "0"},
		{"lone minus", "-", "0"},
		{"mixed junk", "USD 19.95 ", "19.95"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			want, _ := decimal.NewFromString(tt.want)
			assert.True(t, got.Equal(want), "got %s want %s", got, want)
		})
	}
}

func TestNormalizeSKU(t *testing.T) {
	t.Run("strips invisible characters", func(t *testing.T) {
		assert.Equal(t, "ABC-1", NormalizeSKU("\ufeffABC-1\u200b"))
		assert.Equal(t, "ABC-1", NormalizeSKU(" ABC-1 "))
	})

	t.Run("collapses internal whitespace", func(t *testing.T) {
		assert.Equal(t, "A B C", NormalizeSKU("  A   B\t C  "))
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{"\ufeff AB  C ", "plain", "  x‍y  ", ""}
		for _, in := range inputs {
			once := NormalizeSKU(in)
			assert.Equal(t, once, NormalizeSKU(once))
		}
	})
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase code", "ca", "CA"},
		{"uppercase code", "NY", "NY"},
		{"full name", "California", "CA"},
		{"full name mixed case", "nEw YoRk", "NY"},
		{"dc alias", "Washington DC", "DC"},
		{"dc full", "District of Columbia", "DC"},
		{"territory", "puerto rico", "PR"},
		{"unknown passthrough", "Ontario", "Ontario"},
		{"unknown trims", "  Ontario  ", "Ontario"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeState(tt.input))
		})
	}
}

func TestPhoneDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"formatted", "(555) 123-4567", "5551234567"},
		{"with country code", "+1 555 123 4567", "5551234567"},
		{"eleven digits no leading one", "25551234567", "25551234567"},
		{"ten digits", "5551234567", "5551234567"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PhoneDigits(tt.input))
		})
	}
}

func TestSafeEmail(t *testing.T) {
	t.Run("valid candidate wins", func(t *testing.T) {
		assert.Equal(t, "jane@example.com", SafeEmail("jane@example.com", "janedoe", "TT-1"))
	})

	t.Run("invalid candidate falls back to username", func(t *testing.T) {
		assert.Equal(t, "jane.doe@tiktok.local", SafeEmail("not-an-email", "Jane.Doe", "TT-1"))
	})

	t.Run("no username falls back to order id", func(t *testing.T) {
		assert.Equal(t, "tiktok+TT-100@tiktok.local", SafeEmail("", "", "TT-100"))
	})

	t.Run("username sanitized", func(t *testing.T) {
		assert.Equal(t, "jandoe@tiktok.local", SafeEmail("", "Jan Doe!", ""))
	})

	t.Run("deterministic", func(t *testing.T) {
		a := SafeEmail("", "", "TT-7")
		b := SafeEmail("", "", "TT-7")
		assert.Equal(t, a, b)
	})
}

func TestStripWhitespace(t *testing.T) {
	assert.Equal(t, "90210", StripWhitespace(" 90 210 "))
	assert.Equal(t, "", StripWhitespace("   "))
}
