package payment

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// Type classifies what a payment was for. Stored on receipts so payer
// histories can be filtered downstream.
type Type string

const (
	TypeSubscription Type = "subscription"
	TypeRenewal      Type = "renewal"
	TypeInstallment  Type = "installment"
	TypeGroup        Type = "group"
	TypeRefund       Type = "refund"
	TypeReferral     Type = "referral"
	TypeGeneric      Type = "generic"
)

// Receipt is an immutable record of a completed token transfer. Seq is
// a per-payer counter starting at 1; receipts are append-only.
type Receipt struct {
	types.Entity
	ID          id.ReceiptID `json:"id"`
	Seq         int64        `json:"seq"`
	Payer       string       `json:"payer"`
	Payee       string       `json:"payee"`
	Amount      types.Amount `json:"amount"`
	PaymentType Type         `json:"payment_type"`
	ReferenceID string       `json:"reference_id"`
	Timestamp   int64        `json:"timestamp"` // unix seconds
}

// EscrowStatus is the lifecycle state of an escrow record.
type EscrowStatus string

const (
	EscrowPending  EscrowStatus = "pending"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
	EscrowDisputed EscrowStatus = "disputed"
)

// Terminal reports whether the escrow has been resolved.
func (s EscrowStatus) Terminal() bool {
	return s == EscrowReleased || s == EscrowRefunded
}

// Escrow tracks a disputed payment. Escrows are bookkeeping only: no
// funds move when one is created, and resolution simply records the
// outcome. Every escrow opens in the Disputed state and resolves
// exactly once.
type Escrow struct {
	types.Entity
	ID              id.EscrowID  `json:"id"`
	Seq             int64        `json:"seq"`
	Payer           string       `json:"payer"`
	Payee           string       `json:"payee"`
	Amount          types.Amount `json:"amount"`
	Status          EscrowStatus `json:"status"`
	DisputeReason   string       `json:"dispute_reason"`
	ResolutionNotes string       `json:"resolution_notes"`
	CreatedAtUnix   int64        `json:"created_at_unix"`
	ResolvedAtUnix  int64        `json:"resolved_at_unix"`
}

// PriceFeed is the oracle admin's published USD prices, in integer
// cents per whole token. A single feed exists per oracle admin.
type PriceFeed struct {
	types.Entity
	ID          id.PriceFeedID `json:"id"`
	AdminID     string         `json:"admin_id"`
	AptToUSD    int64          `json:"apt_to_usd"`  // cents per APT
	UsdcToUSD   int64          `json:"usdc_to_usd"` // cents per USDC
	UsdtToUSD   int64          `json:"usdt_to_usd"` // cents per USDT
	LastUpdated int64          `json:"last_updated"` // unix seconds
}

// PriceCents returns the published USD price in cents for the token,
// zero if the token is unknown.
func (f *PriceFeed) PriceCents(token types.TokenType) int64 {
	switch token {
	case types.TokenAPT:
		return f.AptToUSD
	case types.TokenUSDC:
		return f.UsdcToUSD
	case types.TokenUSDT:
		return f.UsdtToUSD
	}
	return 0
}
