package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15000000", "15000000"},
		{" 2500.50 ", "2500.5"},
		{"1e6", "1000000"},
		{"", "0"},
		{"abc", "0"},
		{"12abc", "12"},
		{"15000000abc", "15000000"},
		{"15000000 IDR", "15000000"},
		{"2500.75.10", "2500.75"},
		{".5", "0.5"},
		{"+300", "300"},
		{"1e", "1"},
		{"Rp 15000000", "0"},
		{"-500", "0"},
		{"-500abc", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseAmount(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestIsRoundPayment(t *testing.T) {
	assert.True(t, IsRoundPayment(decimal.NewFromInt(5_000_000)))
	assert.True(t, IsRoundPayment(decimal.NewFromInt(1_000_000)))
	assert.False(t, IsRoundPayment(decimal.Zero))
	assert.False(t, IsRoundPayment(decimal.NewFromInt(1_500_000)))
	assert.False(t, IsRoundPayment(decimal.RequireFromString("1000000.5")))
}

func TestFormatIDR(t *testing.T) {
	got := FormatIDR(decimal.NewFromInt(15_000_000))
	assert.Contains(t, got, "Rp ")
	assert.Contains(t, got, "15.000.000")

	neg := FormatIDR(decimal.NewFromInt(-2_000))
	assert.Contains(t, neg, "-Rp ")
}
