package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		decimals int
		expected string
	}{
		{"small", 42, 0, "42"},
		{"three digits", 999, 0, "999"},
		{"thousands", 2543, 0, "2 543"},
		{"rounds", 2543.6, 0, "2 544"},
		{"millions", 1234567, 0, "1 234 567"},
		{"decimals", 12345.678, 2, "12 345.68"},
		{"negative", -12345, 0, "-12 345"},
		{"zero", 0, 2, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Number(tt.v, tt.decimals))
		})
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "135", Money(decimal.NewFromInt(135)))
	assert.Equal(t, "1 350", Money(decimal.NewFromInt(1350)))
	assert.Equal(t, "13.5", Money(decimal.RequireFromString("13.50")))
	assert.Equal(t, "12 345.5", Money(decimal.RequireFromString("12345.5")))
}

func TestKilograms(t *testing.T) {
	assert.Equal(t, "0.43", Kilograms(0.429875))
	assert.Equal(t, "2 543.18", Kilograms(2543.18))
}
