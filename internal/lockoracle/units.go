package lockoracle

import (
	"math/big"
	"strings"
)

// TokenDecimals is the token's fixed-point precision: balances on the wire
// are integers scaled by 10^9.
const TokenDecimals = 9

var unitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil)

// ToBaseUnits converts a whole-token amount into raw base units.
func ToBaseUnits(human int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(human), unitScale)
}

// FromBaseUnits renders a raw balance in human units for display. Whole
// amounts drop the fractional part; otherwise trailing zeros are trimmed.
func FromBaseUnits(raw *big.Int) string {
	quo, rem := new(big.Int).QuoRem(raw, unitScale, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}
	frac := rem.String()
	for len(frac) < TokenDecimals {
		frac = "0" + frac
	}
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}
