package batch

import (
	"math/big"
	"strings"
)

// TotalValue sums every entry's base-unit amount. Used on the native path as
// the value escrowed with the distribution call. Entry order does not affect
// the result.
func (b *Batch) TotalValue() *big.Int {
	total := new(big.Int)
	for _, e := range b.Entries {
		total.Add(total, e.Amount)
	}
	return total
}

// FormatBaseUnits renders a base-unit integer as a decimal string at the given
// precision, e.g. 1750000000000000000 at 18 decimals -> "1.75". Integer math
// only; the inverse of parseAmount.
func FormatBaseUnits(v *big.Int, decimals int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	quo, rem := new(big.Int).QuoRem(v, scale, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := rem.String()
	frac = strings.Repeat("0", decimals-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}
