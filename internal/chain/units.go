package chain

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a human-readable amount cannot be scaled.
var ErrInvalidAmount = errors.New("invalid amount")

// FormatUnits converts a fixed-point integer into a decimal string with the
// given number of decimals. Trailing zeros are trimmed but at least one
// fractional digit is kept, so 10^23 with 18 decimals renders as "100000.0".
// No precision is lost: every significant digit of v is present in the output.
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(v, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseUnits scales a decimal string such as "1000" or "0.25" into its
// fixed-point integer representation. It rejects values with more fractional
// digits than decimals allows.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(ErrInvalidAmount, "empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimals", s, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatEther renders a wei amount in native units.
func FormatEther(wei *big.Int) string { return FormatUnits(wei, 18) }
