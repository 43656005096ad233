// Package event defines the payloads emitted by the subledger engine.
//
// Off-chain consumers (indexers, notification services) subscribe through
// the plugin registry; field sets are stable and part of the public
// contract, so additions are fine but renames are breaking.
package event

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// PlanCreated is emitted when an admin publishes a new plan.
type PlanCreated struct {
	PlanID   string       `json:"plan_id"`
	Duration int64        `json:"duration"`
	Price    types.Amount `json:"price"`
}

// Subscribed is emitted on enrollment and on every successful renewal.
type Subscribed struct {
	User      string `json:"user"`
	PlanAdmin string `json:"plan_admin"`
	PlanID    string `json:"plan_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// Canceled is emitted when a subscription record is removed.
type Canceled struct {
	User string `json:"user"`
}

// PaymentReceived is emitted after a successful subscription payment.
type PaymentReceived struct {
	From   string       `json:"from"`
	PlanID string       `json:"plan_id"`
	Amount types.Amount `json:"amount"`
}

// PaymentFailed is emitted when a payer cannot cover a required payment.
// No state is mutated when this fires.
type PaymentFailed struct {
	From     string       `json:"from"`
	PlanID   string       `json:"plan_id"`
	Required types.Amount `json:"required"`
	Reason   string       `json:"reason"`
}

// DiscountApplied is emitted when the seasonal discount wins and no valid
// discount code was redeemed in the same enrollment.
type DiscountApplied struct {
	User            string       `json:"user"`
	PlanID          string       `json:"plan_id"`
	OriginalPrice   types.Amount `json:"original_price"`
	DiscountedPrice types.Amount `json:"discounted_price"`
	Month           int          `json:"month"`
}

// DiscountCodeUsed is emitted when a redeemed code wins the discount.
type DiscountCodeUsed struct {
	User    string       `json:"user"`
	Code    string       `json:"code"`
	Percent int          `json:"percent"`
	Savings types.Amount `json:"savings"`
}

// LoyaltyRewardApplied is emitted when the loyalty discount wins and
// neither the seasonal discount nor a code applied.
type LoyaltyRewardApplied struct {
	User              string       `json:"user"`
	PlanID            string       `json:"plan_id"`
	SubscriptionCount int64        `json:"subscription_count"`
	Percent           int          `json:"percent"`
	Savings           types.Amount `json:"savings"`
}

// ReferralRewardPaid is emitted when a referrer receives an enrollment reward.
type ReferralRewardPaid struct {
	Referrer string       `json:"referrer"`
	Referee  string       `json:"referee"`
	PlanID   string       `json:"plan_id"`
	Reward   types.Amount `json:"reward"`
}

// GracePeriodStarted is emitted on soft cancellation.
type GracePeriodStarted struct {
	User        string `json:"user"`
	ExpiredAt   int64  `json:"expired_at"`
	GraceEndsAt int64  `json:"grace_ends_at"`
}

// RefundIssued is emitted when an admin-side pro-rated refund is paid out.
type RefundIssued struct {
	User         string       `json:"user"`
	PlanID       string       `json:"plan_id"`
	RefundAmount types.Amount `json:"refund_amount"`
	DaysUnused   int64        `json:"days_unused"`
}

// MultiTokenPaymentMade is emitted for every generic token payment.
type MultiTokenPaymentMade struct {
	Payer       string       `json:"payer"`
	Payee       string       `json:"payee"`
	Amount      types.Amount `json:"amount"`
	TokenType   string       `json:"token_type"`
	PaymentType string       `json:"payment_type"`
}

// InstallmentPlanCreated is emitted when a payer sets up installment billing.
type InstallmentPlanCreated struct {
	Payer             string       `json:"payer"`
	PlanSeq           int64        `json:"plan_seq"`
	TotalAmount       types.Amount `json:"total_amount"`
	NumInstallments   int          `json:"num_installments"`
	InstallmentAmount types.Amount `json:"installment_amount"`
	FrequencyMonths   int          `json:"frequency_months"`
}

// InstallmentPaymentMade is emitted after each successful installment payment.
type InstallmentPaymentMade struct {
	Payer         string       `json:"payer"`
	PlanSeq       int64        `json:"plan_seq"`
	PaymentNumber int          `json:"payment_number"`
	Amount        types.Amount `json:"amount"`
	Completed     bool         `json:"completed"`
}

// ReceiptIssued is emitted for every receipt appended to a payer's history.
type ReceiptIssued struct {
	ReceiptID   id.ReceiptID `json:"receipt_id"`
	Seq         int64        `json:"seq"`
	Payer       string       `json:"payer"`
	Payee       string       `json:"payee"`
	Amount      types.Amount `json:"amount"`
	TokenType   string       `json:"token_type"`
	PaymentType string       `json:"payment_type"`
	ReferenceID string       `json:"reference_id"`
	Timestamp   int64        `json:"timestamp"`
}

// EscrowCreated is emitted when a payment dispute opens an escrow record.
type EscrowCreated struct {
	EscrowID  id.EscrowID  `json:"escrow_id"`
	Seq       int64        `json:"seq"`
	Payer     string       `json:"payer"`
	Payee     string       `json:"payee"`
	Amount    types.Amount `json:"amount"`
	TokenType string       `json:"token_type"`
	Reason    string       `json:"reason"`
}

// EscrowResolved is emitted exactly once per escrow.
type EscrowResolved struct {
	EscrowID        id.EscrowID `json:"escrow_id"`
	Seq             int64       `json:"seq"`
	ReleasedToPayee bool        `json:"released_to_payee"`
	Notes           string      `json:"notes"`
}

// PriceFeedUpdated is emitted when the oracle admin refreshes USD prices.
type PriceFeedUpdated struct {
	AptToUSD  int64 `json:"apt_to_usd"`
	UsdcToUSD int64 `json:"usdc_to_usd"`
	UsdtToUSD int64 `json:"usdt_to_usd"`
	UpdatedAt int64 `json:"updated_at"`
}
