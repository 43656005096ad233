// Package plugin provides an extensible hook system for the billing
// engine. Plugins subscribe to lifecycle events by implementing the
// corresponding interface; the registry discovers implemented hooks at
// registration time.
package plugin

import (
	"context"

	"github.com/xraph/subledger/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnPlanCreated is called when an admin publishes a new plan.
type OnPlanCreated interface {
	Plugin
	OnPlanCreated(ctx context.Context, e *event.PlanCreated) error
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscribed is called on enrollment and on every renewal.
type OnSubscribed interface {
	Plugin
	OnSubscribed(ctx context.Context, e *event.Subscribed) error
}

// OnCanceled is called when a subscription record is removed.
type OnCanceled interface {
	Plugin
	OnCanceled(ctx context.Context, e *event.Canceled) error
}

// OnGracePeriodStarted is called on soft cancellation.
type OnGracePeriodStarted interface {
	Plugin
	OnGracePeriodStarted(ctx context.Context, e *event.GracePeriodStarted) error
}

// OnRefundIssued is called when a pro-rated refund is paid out.
type OnRefundIssued interface {
	Plugin
	OnRefundIssued(ctx context.Context, e *event.RefundIssued) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentReceived is called after a successful subscription payment.
type OnPaymentReceived interface {
	Plugin
	OnPaymentReceived(ctx context.Context, e *event.PaymentReceived) error
}

// OnPaymentFailed is called when a payer cannot cover a payment.
type OnPaymentFailed interface {
	Plugin
	OnPaymentFailed(ctx context.Context, e *event.PaymentFailed) error
}

// OnMultiTokenPayment is called for every generic token payment.
type OnMultiTokenPayment interface {
	Plugin
	OnMultiTokenPayment(ctx context.Context, e *event.MultiTokenPaymentMade) error
}

// OnReceiptIssued is called for every receipt appended.
type OnReceiptIssued interface {
	Plugin
	OnReceiptIssued(ctx context.Context, e *event.ReceiptIssued) error
}

// ──────────────────────────────────────────────────
// Discount hooks
// ──────────────────────────────────────────────────

// OnDiscountApplied is called when the seasonal discount wins.
type OnDiscountApplied interface {
	Plugin
	OnDiscountApplied(ctx context.Context, e *event.DiscountApplied) error
}

// OnDiscountCodeUsed is called when a redeemed code wins the discount.
type OnDiscountCodeUsed interface {
	Plugin
	OnDiscountCodeUsed(ctx context.Context, e *event.DiscountCodeUsed) error
}

// OnLoyaltyRewardApplied is called when the loyalty discount wins.
type OnLoyaltyRewardApplied interface {
	Plugin
	OnLoyaltyRewardApplied(ctx context.Context, e *event.LoyaltyRewardApplied) error
}

// ──────────────────────────────────────────────────
// Referral hooks
// ──────────────────────────────────────────────────

// OnReferralRewardPaid is called when a referrer receives a reward.
type OnReferralRewardPaid interface {
	Plugin
	OnReferralRewardPaid(ctx context.Context, e *event.ReferralRewardPaid) error
}

// ──────────────────────────────────────────────────
// Installment hooks
// ──────────────────────────────────────────────────

// OnInstallmentPlanCreated is called when installment billing is set up.
type OnInstallmentPlanCreated interface {
	Plugin
	OnInstallmentPlanCreated(ctx context.Context, e *event.InstallmentPlanCreated) error
}

// OnInstallmentPaymentMade is called after each installment payment.
type OnInstallmentPaymentMade interface {
	Plugin
	OnInstallmentPaymentMade(ctx context.Context, e *event.InstallmentPaymentMade) error
}

// ──────────────────────────────────────────────────
// Escrow hooks
// ──────────────────────────────────────────────────

// OnEscrowCreated is called when a dispute opens an escrow record.
type OnEscrowCreated interface {
	Plugin
	OnEscrowCreated(ctx context.Context, e *event.EscrowCreated) error
}

// OnEscrowResolved is called exactly once per escrow.
type OnEscrowResolved interface {
	Plugin
	OnEscrowResolved(ctx context.Context, e *event.EscrowResolved) error
}

// ──────────────────────────────────────────────────
// Oracle hooks
// ──────────────────────────────────────────────────

// OnPriceFeedUpdated is called when the oracle admin refreshes prices.
type OnPriceFeedUpdated interface {
	Plugin
	OnPriceFeedUpdated(ctx context.Context, e *event.PriceFeedUpdated) error
}
