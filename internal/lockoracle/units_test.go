package lockoracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBaseUnits(t *testing.T) {
	assert.Equal(t, "5000000000000", ToBaseUnits(5000).String())
	assert.Equal(t, "1000000000", ToBaseUnits(1).String())
	assert.Equal(t, "0", ToBaseUnits(0).String())
}

func TestFromBaseUnits(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"5000000000000", "5000"},
		{"1000000000", "1"},
		{"0", "0"},
		{"1500000000", "1.5"},
		{"1000000001", "1.000000001"},
		{"123", "0.000000123"},
		{"2500000000000", "2500"},
	}
	for _, tc := range cases {
		raw, ok := new(big.Int).SetString(tc.raw, 10)
		assert.True(t, ok)
		assert.Equal(t, tc.want, FromBaseUnits(raw), "raw %s", tc.raw)
	}
}
