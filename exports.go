package subledger

import "github.com/xraph/subledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// TokenType is re-exported from types package.
type TokenType = types.TokenType

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export token constants
const (
	TokenAPT  = types.TokenAPT
	TokenUSDC = types.TokenUSDC
	TokenUSDT = types.TokenUSDT
)

// Re-export Amount constructors
var (
	APT  = types.APT
	USDC = types.USDC
	USDT = types.USDT
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
