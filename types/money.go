// Package types provides common types used across Ledger.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value as a count of cents.
// All arithmetic is integer-only — no floating point. Amounts render with
// exactly two decimal places; currency designation is outside the ledger's
// scope.
//
// Examples:
//   - Cents(7550) renders as "75.50"
//   - Cents(0) renders as "0.00"
type Money struct {
	Cents int64 `json:"cents"`
}

// Cents creates a Money value from a raw cent count.
func Cents(c int64) Money { return Money{Cents: c} }

// ParseAmount parses a plain decimal string such as "75.50" into Money.
// At most two decimal places are accepted; scientific notation, currency
// symbols, and finer precision are all rejected.
func ParseAmount(s string) (Money, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Money{}, fmt.Errorf("amount is empty")
	}
	if strings.ContainsAny(trimmed, "eE") {
		return Money{}, fmt.Errorf("amount %q: scientific notation not supported", s)
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Money{}, fmt.Errorf("amount %q: %w", s, err)
	}

	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return Money{}, fmt.Errorf("amount %q: more than two decimal places", s)
	}

	return Money{Cents: shifted.IntPart()}, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for
// hardcoded amounts in tests and examples.
func MustParseAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic(fmt.Sprintf("types: must parse amount %q: %v", s, err))
	}
	return m
}

// Arithmetic operations

// Add adds two Money values.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub subtracts another Money value.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg returns the negative of the Money value.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Cents > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Equal returns true if both Money values are equal.
func (m Money) Equal(other Money) bool { return m.Cents == other.Cents }

// LessThan returns true if this Money is less than other.
func (m Money) LessThan(other Money) bool { return m.Cents < other.Cents }

// GreaterThanOrEqual returns true if this Money is at least other.
func (m Money) GreaterThanOrEqual(other Money) bool { return m.Cents >= other.Cents }

// Formatting methods

// String renders the amount with exactly two decimal places, e.g. "195.50".
func (m Money) String() string {
	return decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cents   int64  `json:"cents"`
		Display string `json:"display"`
	}{
		Cents:   m.Cents,
		Display: m.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. It accepts both the object
// form produced by MarshalJSON and a bare cent count.
func (m *Money) UnmarshalJSON(data []byte) error {
	var obj struct {
		Cents int64 `json:"cents"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		m.Cents = obj.Cents
		return nil
	}

	var cents int64
	if err := json.Unmarshal(data, &cents); err != nil {
		return fmt.Errorf("types: cannot unmarshal %s into Money", data)
	}
	m.Cents = cents
	return nil
}

// Sum calculates the sum of multiple Money values.
func Sum(values ...Money) Money {
	var total Money
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
