package types

import "strings"

// TokenType identifies a fungible settlement token.
// The engine is token-agnostic: any registered token works, but the three
// tokens below have well-known unit scales for USD price-feed conversion.
type TokenType string

// Well-known token types.
const (
	TokenAPT  TokenType = "apt"
	TokenUSDC TokenType = "usdc"
	TokenUSDT TokenType = "usdt"
)

// Token normalizes a token symbol to a TokenType.
func Token(symbol string) TokenType {
	return TokenType(strings.ToLower(symbol))
}

// Decimals returns the number of base-unit decimal places for the token.
// APT uses 8 (octas); the stablecoins use 6.
func (t TokenType) Decimals() int {
	switch t {
	case TokenAPT:
		return 8
	case TokenUSDC, TokenUSDT:
		return 6
	default:
		return 8
	}
}

// UnitScale returns the number of base units per whole token (10^Decimals).
func (t TokenType) UnitScale() int64 {
	scale := int64(1)
	for i := 0; i < t.Decimals(); i++ {
		scale *= 10
	}
	return scale
}

// Symbol returns the display symbol for the token.
func (t TokenType) Symbol() string {
	return strings.ToUpper(string(t))
}
