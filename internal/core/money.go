// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. On the wire they are plain JSON numbers
// (120, 12.5) so stored ledgers stay readable by any client.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// MaxAmountCents bounds a single entry so that sums over any realistic ledger
// stay far inside int64.
const MaxAmountCents int64 = 100_000_000_000_000

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// MoneyFromDecimal rounds d half away from zero to two decimals. Values
// beyond the int64 cents range saturate instead of wrapping.
func MoneyFromDecimal(d decimal.Decimal) Money {
	cents := d.Shift(2).Round(0)
	switch {
	case cents.GreaterThan(maxCents):
		return Money{Cents: math.MaxInt64}
	case cents.LessThan(minCents):
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: cents.IntPart()}
}

// ParseMoney parses a decimal string, accepting dot or comma separators.
// Zero and negative values are rejected.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents (half-up)
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := MoneyFromDecimal(d)
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Validate accepts positive amounts up to MaxAmountCents.
func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the value for display math only; sums stay in cents.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// String renders the shortest decimal form: 120, 12.5, 0.05.
func (m Money) String() string {
	return m.Decimal().String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*m = MoneyFromDecimal(d)
	return nil
}
