package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityPolicyConvert(t *testing.T) {
	cases := []struct {
		policy  QuantityPolicy
		qty     string
		want    int
		rounded bool
		err     error
	}{
		{QuantityReject, "4", 4, false, nil},
		{QuantityReject, "4.000", 4, false, nil},
		{QuantityReject, "2.5", 0, false, ErrFractionalQuantity},
		{QuantityFloor, "2.9", 2, true, nil},
		{QuantityFloor, "0.4", 0, true, ErrNonPositiveQuantity},
		{QuantityCeil, "2.1", 3, true, nil},
		{QuantityCeil, "0.01", 1, true, nil},
		{QuantityHalfUp, "2.5", 3, true, nil},
		{QuantityHalfUp, "2.49", 2, true, nil},
		{QuantityHalfUp, "0", 0, false, ErrNonPositiveQuantity},
		{QuantityFloor, "-3", 0, false, ErrNonPositiveQuantity},
		{QuantityFloor, "3000000000", 0, false, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy)+"/"+tc.qty, func(t *testing.T) {
			got, rounded, err := tc.policy.Convert(decimal.RequireFromString(tc.qty))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.rounded, rounded)
		})
	}
}

func TestParseQuantityPolicy(t *testing.T) {
	p, err := ParseQuantityPolicy("")
	require.NoError(t, err)
	assert.Equal(t, QuantityReject, p)

	p, err = ParseQuantityPolicy("half_up")
	require.NoError(t, err)
	assert.Equal(t, QuantityHalfUp, p)

	_, err = ParseQuantityPolicy("banker")
	assert.Error(t, err)
}

func TestParseSheetStock(t *testing.T) {
	ok := map[string]int{
		"":          0,
		" 7 ":       7,
		"12.0":      12,
		"1,500":     1500,
		"1,234,567": 1234567,
	}
	for text, want := range ok {
		got, err := ParseSheetStock(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, got, text)
	}

	for _, text := range []string{"many", "12.5", "-3", "1,5", "3000000000", "1.500,00"} {
		_, err := ParseSheetStock(text)
		assert.ErrorIs(t, err, ErrValidation, text)
	}
}
