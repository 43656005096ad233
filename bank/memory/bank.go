// Package memory provides an in-memory Bank for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/subledger/bank"
	"github.com/xraph/subledger/types"
)

type key struct {
	account string
	token   types.TokenType
}

// Bank is a thread-safe in-memory balance ledger. Accounts must be
// funded (or registered with a zero deposit) before they can transact
// in a token.
type Bank struct {
	mu       sync.Mutex
	balances map[key]int64
}

var _ bank.Bank = (*Bank)(nil)

// New returns an empty in-memory bank.
func New() *Bank {
	return &Bank{balances: make(map[key]int64)}
}

// Deposit credits the account, registering it for the token if needed.
func (b *Bank) Deposit(account string, amount types.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[key{account, amount.Token}] += amount.Units
}

// Register opens a zero balance for the account in the token.
func (b *Bank) Register(account string, token types.TokenType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := key{account, token}
	if _, ok := b.balances[k]; !ok {
		b.balances[k] = 0
	}
}

func (b *Bank) Transfer(ctx context.Context, from, to string, amount types.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fromKey := key{from, amount.Token}
	fromBal, ok := b.balances[fromKey]
	if !ok {
		return bank.ErrAccountNotRegistered
	}
	toKey := key{to, amount.Token}
	if _, ok := b.balances[toKey]; !ok {
		return bank.ErrAccountNotRegistered
	}
	if fromBal < amount.Units {
		return bank.ErrInsufficientFunds
	}

	b.balances[fromKey] = fromBal - amount.Units
	b.balances[toKey] += amount.Units
	return nil
}

func (b *Bank) Balance(ctx context.Context, account string, token types.TokenType) (types.Amount, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bal, ok := b.balances[key{account, token}]
	if !ok {
		return types.Zero(token), bank.ErrAccountNotRegistered
	}
	return types.Amount{Units: bal, Token: token}, nil
}

func (b *Bank) IsRegistered(ctx context.Context, account string, token types.TokenType) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.balances[key{account, token}]
	return ok
}
