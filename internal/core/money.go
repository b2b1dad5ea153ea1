// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings and
// JSON, and for rendering them with exactly two fractional digits.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrAmountPrecision = errors.New("amount must have at most 2 decimal places")
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

const (
	// maxAmountLen bounds a plain amount literal after trailing fractional
	// zeros are dropped. Longer literals cannot fit in int64 cents.
	maxAmountLen = 32
	// maxScale bounds the decimal exponent accepted by MoneyFromDecimal.
	maxScale = 18
)

// ParseAmount converts a decimal string to Money.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Values with more
// than two significant fractional digits are rejected rather than rounded.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,3")   -> 1230 cents
//	ParseAmount("12.340") -> 1234 cents
//	ParseAmount("12.345") -> ErrAmountPrecision
//	ParseAmount("-1")     -> ErrNegativeAmount
//	ParseAmount("1e3")    -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Contains(s, ".") {
		s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	}
	if len(s) > maxAmountLen {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal converts d to Money, enforcing the non-negative and
// two-decimal-place invariants.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	// Checked before any rescaling: Truncate and Shift allocate 10^|exp|.
	if exp := d.Exponent(); exp > maxScale {
		return Money{}, ErrInvalidAmount
	} else if exp < -maxScale {
		return Money{}, ErrAmountPrecision
	}
	if !d.Equal(d.Truncate(2)) {
		return Money{}, ErrAmountPrecision
	}
	cents := d.Shift(2)
	if cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount as a decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return Invalid("amount", ErrInvalidAmount.Error())
		}
		raw = unquoted
	}

	parsed, err := ParseAmount(raw)
	if err != nil {
		return Invalid("amount", err.Error())
	}
	*m = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}
