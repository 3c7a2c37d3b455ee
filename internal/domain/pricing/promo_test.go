package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPromo(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
		wantErr  bool
	}{
		{"upper case", "ECO10", "ECO10", false},
		{"lower case", "eco10", "ECO10", false},
		{"mixed case with spaces", "  Eco10 ", "ECO10", false},
		{"cyrillic", "зеленый", "ЗЕЛЕНЫЙ", false},
		{"cyrillic with yo is a different code", "зелёный", "", true},
		{"unknown", "NOTREAL", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo, err := LookupPromo(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPromo)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, promo.Code)
			assert.Equal(t, "0.1", promo.Discount.String())
		})
	}
}

func TestLookupPromo_CaseInsensitiveSameDiscount(t *testing.T) {
	lower, err := LookupPromo("eco10")
	require.NoError(t, err)
	upper, err := LookupPromo("ECO10")
	require.NoError(t, err)

	assert.True(t, lower.Discount.Equal(upper.Discount))
}

func TestMaxDiscount(t *testing.T) {
	assert.Equal(t, "0.1", MaxDiscount().String())
}
