// Package money provides the fixed-point amount type used for every balance
// and transaction value in the engine. All amounts are kept at two decimal
// places; arithmetic results are rounded immediately so no sub-cent residue
// survives a chain of operations.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const places = 2

// Money is an immutable two-decimal-place amount. The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// Zero returns 0.00.
func Zero() Money {
	return Money{}
}

// FromDecimal builds a Money from a raw decimal, rounding to two places.
func FromDecimal(d decimal.Decimal) Money {
	return Money{amount: d.Round(places)}
}

// FromCents builds a Money from an integer number of minor units.
func FromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -places)}
}

// Parse builds a Money from its string form, e.g. "1050.00".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for constants known to be valid; it panics otherwise.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return m.amount.Shift(places).IntPart()
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// Mul applies a rate to the amount and rounds the result to two places.
func (m Money) Mul(r Rate) Money {
	return FromDecimal(m.amount.Mul(r.value))
}

// MulInt scales the amount by an integer factor.
func (m Money) MulInt(n int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(n))}
}

func (m Money) Cmp(o Money) int {
	return m.amount.Cmp(o.amount)
}

func (m Money) Sign() int {
	return m.amount.Sign()
}

func (m Money) IsPositive() bool {
	return m.amount.Sign() > 0
}

func (m Money) IsNegative() bool {
	return m.amount.Sign() < 0
}

func (m Money) IsZero() bool {
	return m.amount.Sign() == 0
}

func (m Money) GreaterThan(o Money) bool {
	return m.amount.Cmp(o.amount) > 0
}

func (m Money) LessThan(o Money) bool {
	return m.amount.Cmp(o.amount) < 0
}

func (m Money) Equal(o Money) bool {
	return m.amount.Cmp(o.amount) == 0
}

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	return m.amount.StringFixed(places)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = FromDecimal(d)
	return nil
}

// Rate is a per-period multiplier, e.g. 0.05 for five percent per accrual
// tick. Unlike Money it keeps full precision; rounding happens only when a
// rate is applied to an amount.
type Rate struct {
	value decimal.Decimal
}

// ParseRate builds a Rate from its string form, e.g. "0.05".
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, fmt.Errorf("parse rate %q: %w", s, err)
	}
	return Rate{value: d}, nil
}

// MustParseRate is ParseRate for constants known to be valid.
func MustParseRate(s string) Rate {
	r, err := ParseRate(s)
	if err != nil {
		panic(err)
	}
	return r
}

// RateFromDecimal wraps a raw decimal as a Rate.
func RateFromDecimal(d decimal.Decimal) Rate {
	return Rate{value: d}
}

func (r Rate) Decimal() decimal.Decimal {
	return r.value
}

func (r Rate) IsZero() bool {
	return r.value.Sign() == 0
}

func (r Rate) String() string {
	return r.value.String()
}
