package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"0", 0, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"1200", 120000, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if assert.NoError(t, err, tc.in) {
				assert.Equal(t, tc.out, got.Cents, tc.in)
			}
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	m, err := MoneyFromFloat(3642)
	assert.NoError(t, err)
	assert.Equal(t, int64(364200), m.Cents)

	m, err = MoneyFromFloat(19.99)
	assert.NoError(t, err)
	assert.Equal(t, int64(1999), m.Cents)

	_, err = MoneyFromFloat(-0.5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMoneyConversions(t *testing.T) {
	m := Money{Cents: 123456}
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, 1234.56, m.Float64())
	assert.Equal(t, "1234.56", m.String())
	assert.True(t, Money{}.IsZero())
}
