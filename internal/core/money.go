// Package core holds the domain model shared by every other package:
// expenses, budgets, recurring templates, money and calendar dates.
package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount bounds every amount in absolute value.
var MaxAmount = decimal.New(1, 12)

// maxAmountLen bounds the textual form before any decimal arithmetic runs.
const maxAmountLen = 32

// Money is a two-decimal fixed-point amount. It is persisted as a string
// such as "12.30" so repeated sums never drift.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MoneyFromCents builds an amount from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.New(cents, -2)}
}

// ParseMoney parses a user supplied amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and the
// value is rounded half-up to cents. Signed, zero, malformed and oversized
// inputs (exponent notation, MaxAmount and above) are rejected with
// ErrInvalidAmount.
//
//	ParseMoney("12.345") -> 12.35
//	ParseMoney("-5")     -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, fmt.Errorf("%w: %q must be a positive number", ErrInvalidAmount, s)
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	m := NewMoney(d)
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Validate reports ErrInvalidAmount unless the amount is strictly positive.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

// Add returns m+o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Sub returns m-o, which may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// String renders the two-decimal storage form.
func (m Money) String() string {
	return m.StringFixed(2)
}

// Float64 is for display math only (percentages, chart values).
func (m Money) Float64() float64 {
	return m.InexactFloat64()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed(2))
}

// UnmarshalJSON accepts both "12.30" and 12.3. Signed values are allowed
// since derived amounts such as a remaining budget can be negative.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	d, err := ParseDecimal(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

// ParseDecimal parses a plain, possibly signed, decimal number. Exponent
// notation and values of MaxAmount and above are rejected before they can
// expand into huge integers.
func ParseDecimal(s string) (decimal.Decimal, error) {
	if len(s) > maxAmountLen || strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, fmt.Errorf("%w: %.32q is not a plain decimal number", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q exceeds %s", ErrInvalidAmount, s, MaxAmount.String())
	}
	return d, nil
}
