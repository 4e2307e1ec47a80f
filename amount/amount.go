// Package amount converts between human-readable decimal quantities and the
// uint64 base units held by the ledger. Native currency and issuance tokens
// share the same 8-decimal base unit.
package amount

import (
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of fractional digits in one coin.
	Decimals = 8

	// Coin is one whole coin in base units.
	Coin uint64 = 100_000_000
)

// Parse converts a decimal string such as "1.5" into base units.
func Parse(s string) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if d.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegative, s)
	}

	units := d.Shift(Decimals)
	if !units.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrPrecision, s)
	}

	bi := units.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, s)
	}
	return bi.Uint64(), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) uint64 {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Format renders base units as a decimal string with trailing zeros trimmed.
func Format(units uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -Decimals).String()
}

// Coins returns n whole coins in base units. It panics on overflow.
func Coins(n uint64) uint64 {
	v, err := Mul(n, Coin)
	if err != nil {
		panic(err)
	}
	return v
}

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Mul returns a*b or ErrOverflow.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
