// Package types provides common types used across subledger.
package types

import (
	"encoding/json"
	"fmt"
)

// Amount represents a token value in the token's smallest base unit.
// All arithmetic is integer-only — no floating point. Division and
// percentage operations truncate toward zero, matching on-ledger math.
//
// Examples:
//   - APT(100000000)  = 1 APT (8 decimals, "octas")
//   - USDC(1000000)   = 1 USDC (6 decimals)
//   - USDT(2500000)   = 2.5 USDT
type Amount struct {
	Units int64     `json:"units"` // Smallest base unit
	Token TokenType `json:"token"` // Lowercase symbol: "apt", "usdc", "usdt"
}

// Token constructors

// APT creates an Amount in Aptos coin base units (octas).
func APT(units int64) Amount { return Amount{Units: units, Token: TokenAPT} }

// USDC creates an Amount in USDC base units.
func USDC(units int64) Amount { return Amount{Units: units, Token: TokenUSDC} }

// USDT creates an Amount in USDT base units.
func USDT(units int64) Amount { return Amount{Units: units, Token: TokenUSDT} }

// Zero returns a zero Amount in the given token.
func Zero(token TokenType) Amount { return Amount{Units: 0, Token: token} }

// Arithmetic operations

// Add adds two Amounts. Panics if tokens don't match.
func (a Amount) Add(other Amount) Amount {
	a.assertSameToken(other)
	return Amount{Units: a.Units + other.Units, Token: a.Token}
}

// Subtract subtracts another Amount. Panics if tokens don't match.
func (a Amount) Subtract(other Amount) Amount {
	a.assertSameToken(other)
	return Amount{Units: a.Units - other.Units, Token: a.Token}
}

// Percent returns floor(units * percent / 100).
func (a Amount) Percent(percent int) Amount {
	return Amount{Units: a.Units * int64(percent) / 100, Token: a.Token}
}

// PercentOff returns floor(units * (100 - percent) / 100) — the price after
// applying a percentage discount.
func (a Amount) PercentOff(percent int) Amount {
	return Amount{Units: a.Units * int64(100-percent) / 100, Token: a.Token}
}

// Prorate returns floor(units * num / den). A zero or negative denominator
// yields zero: pro-ration against an unknown reference period pays nothing.
func (a Amount) Prorate(num, den int64) Amount {
	if den <= 0 {
		return Zero(a.Token)
	}
	return Amount{Units: a.Units * num / den, Token: a.Token}
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.Units == 0 }

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool { return a.Units > 0 }

// Equal returns true if both Amounts are equal (same units and token).
func (a Amount) Equal(other Amount) bool {
	return a.Units == other.Units && a.Token == other.Token
}

// LessThan returns true if this Amount is less than other. Panics if tokens don't match.
func (a Amount) LessThan(other Amount) bool {
	a.assertSameToken(other)
	return a.Units < other.Units
}

// GreaterThan returns true if this Amount is greater than other. Panics if tokens don't match.
func (a Amount) GreaterThan(other Amount) bool {
	a.assertSameToken(other)
	return a.Units > other.Units
}

// Max returns the larger of two Amounts. Panics if tokens don't match.
func (a Amount) Max(other Amount) Amount {
	a.assertSameToken(other)
	if a.Units > other.Units {
		return a
	}
	return other
}

// Formatting methods

// FormatMajor returns the whole-token string without the symbol.
// APT(150000000) formats as "1.50000000"; USDC(2500000) as "2.500000".
func (a Amount) FormatMajor() string {
	decimals := a.Token.Decimals()
	divisor := a.Token.UnitScale()

	isNegative := a.Units < 0
	absUnits := a.Units
	if isNegative {
		absUnits = -absUnits
	}

	major := absUnits / divisor
	minor := absUnits % divisor

	format := fmt.Sprintf("%%d.%%0%dd", decimals)
	result := fmt.Sprintf(format, major, minor)

	if isNegative {
		return "-" + result
	}
	return result
}

// String returns a human-readable string with the token symbol.
// Examples: "1.50000000 APT", "2.500000 USDC".
func (a Amount) String() string {
	return a.FormatMajor() + " " + a.Token.Symbol()
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Units   int64     `json:"units"`
		Token   TokenType `json:"token"`
		Display string    `json:"display"`
	}{
		Units:   a.Units,
		Token:   a.Token,
		Display: a.String(),
	})
}

// Helper functions

// assertSameToken panics if tokens don't match.
func (a Amount) assertSameToken(other Amount) {
	if a.Token != other.Token {
		panic(fmt.Sprintf("amount: token mismatch: %s != %s", a.Token, other.Token))
	}
}

// Sum calculates the sum of multiple Amounts. All must have the same token.
func Sum(values ...Amount) Amount {
	if len(values) == 0 {
		return Zero(TokenAPT)
	}

	result := values[0]
	for i := 1; i < len(values); i++ {
		result = result.Add(values[i])
	}
	return result
}
