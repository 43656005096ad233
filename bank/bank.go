// Package bank abstracts the token balance layer the billing engine
// settles against. Implementations may wrap a chain client, a payment
// processor, or an in-memory ledger for tests.
package bank

import (
	"context"
	"errors"

	"github.com/xraph/subledger/types"
)

var (
	// ErrInsufficientFunds is returned when a transfer exceeds the
	// payer's balance.
	ErrInsufficientFunds = errors.New("bank: insufficient funds")

	// ErrAccountNotRegistered is returned when an account has no
	// balance record for the requested token.
	ErrAccountNotRegistered = errors.New("bank: account not registered for token")
)

// Bank moves and reports token balances. Transfer must be atomic: it
// either debits the payer and credits the payee in full, or fails with
// no effect.
type Bank interface {
	Transfer(ctx context.Context, from, to string, amount types.Amount) error
	Balance(ctx context.Context, account string, token types.TokenType) (types.Amount, error)
	IsRegistered(ctx context.Context, account string, token types.TokenType) bool
}
