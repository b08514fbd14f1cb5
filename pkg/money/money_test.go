package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := map[string]int64{
		"10":     1000,
		"10.00":  1000,
		"10.5":   1050,
		"0.01":   1,
		"123.45": 12345,
		"-2.50":  -250,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Parse("1.005")
	assert.ErrorIs(t, err, ErrTooPrecise)

	_, err = Parse("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParse_Int64Bounds(t *testing.T) {
	got, err := Parse("92233720368547758.07")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	got, err = Parse("-92233720368547758.08")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), got)

	// 2^64+100分，直接取整数部分会回绕成100
	for _, in := range []string{"92233720368547758.08", "184467440737095517.16", "-92233720368547758.09"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "30.00", Format(3000))
	assert.Equal(t, "0.07", Format(7))
	assert.Equal(t, "1234.50", Format(123450))
}
