/*
amount.go - Fixed-point money values

PURPOSE:
  All balances and transaction amounts in the system are Amounts: fixed-point
  decimals with four fractional digits. Floating point is never used for
  money - a float32 silently loses cents once balances grow, and that is the
  worst possible failure for a ledger.

OVERFLOW POLICY:
  decimal.Decimal is arbitrary precision, but the engine still caps every
  stored amount at a fixed magnitude. Any operation that would cross the cap
  fails with ErrArithmeticOverflow and leaves its inputs untouched, instead
  of letting a hostile input stream inflate a balance without bound.

SEE ALSO:
  - account.go: Balance mutation primitives built on Amount
  - record.go: Input validation (non-negative amounts on deposit/withdrawal)
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the fixed fractional precision for every amount in the system.
const Places = 4

// maxMagnitude caps the absolute value of any stored amount.
var maxMagnitude = decimal.New(1, 13)

// =============================================================================
// AMOUNT - Fixed-point decimal quantity
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

// NewAmount builds an Amount from a decimal, rounding to Places and
// enforcing the magnitude cap.
func NewAmount(d decimal.Decimal) (Amount, error) {
	d = d.Round(Places)
	if d.Abs().GreaterThan(maxMagnitude) {
		return Amount{}, fmt.Errorf("%w: %s", ErrArithmeticOverflow, d)
	}
	return Amount{Value: d}, nil
}

// ParseAmount parses a decimal string such as "1.5" or "0.0001".
// Sign is accepted here; non-negativity of input amounts is a Record
// validation concern, not a numeric one.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: amount %q", ErrMalformedRecord, s)
	}
	return NewAmount(d)
}

// MustAmount is a test helper. It panics on invalid input.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b, failing instead of crossing the magnitude cap.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a.Value.Add(b.Value)
	if sum.Abs().GreaterThan(maxMagnitude) {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrArithmeticOverflow, a, b)
	}
	return Amount{Value: sum}, nil
}

// Sub returns a-b, failing instead of crossing the magnitude cap.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := a.Value.Sub(b.Value)
	if diff.Abs().GreaterThan(maxMagnitude) {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrArithmeticOverflow, a, b)
	}
	return Amount{Value: diff}, nil
}

func (a Amount) IsNegative() bool       { return a.Value.IsNegative() }
func (a Amount) IsZero() bool           { return a.Value.IsZero() }
func (a Amount) LessThan(b Amount) bool { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool    { return a.Value.Equal(b.Value) }

// String renders with the fixed precision, e.g. "10.0000".
func (a Amount) String() string { return a.Value.StringFixed(Places) }
