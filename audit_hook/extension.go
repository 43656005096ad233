// Package audithook bridges Subledger lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                   = (*Extension)(nil)
	_ plugin.OnPlanCreated            = (*Extension)(nil)
	_ plugin.OnSubscribed             = (*Extension)(nil)
	_ plugin.OnCanceled               = (*Extension)(nil)
	_ plugin.OnGracePeriodStarted     = (*Extension)(nil)
	_ plugin.OnRefundIssued           = (*Extension)(nil)
	_ plugin.OnPaymentReceived        = (*Extension)(nil)
	_ plugin.OnPaymentFailed          = (*Extension)(nil)
	_ plugin.OnMultiTokenPayment      = (*Extension)(nil)
	_ plugin.OnReceiptIssued          = (*Extension)(nil)
	_ plugin.OnDiscountApplied        = (*Extension)(nil)
	_ plugin.OnDiscountCodeUsed       = (*Extension)(nil)
	_ plugin.OnLoyaltyRewardApplied   = (*Extension)(nil)
	_ plugin.OnReferralRewardPaid     = (*Extension)(nil)
	_ plugin.OnInstallmentPlanCreated = (*Extension)(nil)
	_ plugin.OnInstallmentPaymentMade = (*Extension)(nil)
	_ plugin.OnEscrowCreated          = (*Extension)(nil)
	_ plugin.OnEscrowResolved         = (*Extension)(nil)
	_ plugin.OnPriceFeedUpdated       = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Subledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (e *Extension) OnPlanCreated(ctx context.Context, evt *event.PlanCreated) error {
	return e.record(ctx, ActionPlanCreated, SeverityInfo, OutcomeSuccess,
		ResourcePlan, evt.PlanID, CategoryBilling, nil,
		"plan_id", evt.PlanID,
		"duration", evt.Duration,
		"price", evt.Price.String(),
	)
}

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscribed implements plugin.OnSubscribed.
func (e *Extension) OnSubscribed(ctx context.Context, evt *event.Subscribed) error {
	return e.record(ctx, ActionSubscriptionCreated, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, evt.User, CategorySubscription, nil,
		"user", evt.User,
		"plan_admin", evt.PlanAdmin,
		"plan_id", evt.PlanID,
		"expires_at", evt.ExpiresAt,
	)
}

// OnCanceled implements plugin.OnCanceled.
func (e *Extension) OnCanceled(ctx context.Context, evt *event.Canceled) error {
	return e.record(ctx, ActionSubscriptionCanceled, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, evt.User, CategorySubscription, nil,
		"user", evt.User,
	)
}

// OnGracePeriodStarted implements plugin.OnGracePeriodStarted.
func (e *Extension) OnGracePeriodStarted(ctx context.Context, evt *event.GracePeriodStarted) error {
	return e.record(ctx, ActionGracePeriodStarted, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, evt.User, CategorySubscription, nil,
		"user", evt.User,
		"expired_at", evt.ExpiredAt,
		"grace_ends_at", evt.GraceEndsAt,
	)
}

// OnRefundIssued implements plugin.OnRefundIssued.
func (e *Extension) OnRefundIssued(ctx context.Context, evt *event.RefundIssued) error {
	return e.record(ctx, ActionRefundIssued, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, evt.User, CategoryPayment, nil,
		"user", evt.User,
		"plan_id", evt.PlanID,
		"refund", evt.RefundAmount.String(),
		"days_unused", evt.DaysUnused,
	)
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentReceived implements plugin.OnPaymentReceived.
func (e *Extension) OnPaymentReceived(ctx context.Context, evt *event.PaymentReceived) error {
	return e.record(ctx, ActionPaymentReceived, SeverityInfo, OutcomeSuccess,
		ResourcePayment, evt.From, CategoryPayment, nil,
		"from", evt.From,
		"plan_id", evt.PlanID,
		"amount", evt.Amount.String(),
	)
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (e *Extension) OnPaymentFailed(ctx context.Context, evt *event.PaymentFailed) error {
	return e.record(ctx, ActionPaymentFailed, SeverityWarning, OutcomeFailure,
		ResourcePayment, evt.From, CategoryPayment, nil,
		"from", evt.From,
		"plan_id", evt.PlanID,
		"required", evt.Required.String(),
		"reason", evt.Reason,
	)
}

// OnMultiTokenPayment implements plugin.OnMultiTokenPayment.
func (e *Extension) OnMultiTokenPayment(ctx context.Context, evt *event.MultiTokenPaymentMade) error {
	return e.record(ctx, ActionMultiTokenPayment, SeverityInfo, OutcomeSuccess,
		ResourcePayment, evt.Payer, CategoryPayment, nil,
		"payer", evt.Payer,
		"payee", evt.Payee,
		"amount", evt.Amount.String(),
		"token_type", evt.TokenType,
		"payment_type", evt.PaymentType,
	)
}

// OnReceiptIssued implements plugin.OnReceiptIssued.
func (e *Extension) OnReceiptIssued(ctx context.Context, evt *event.ReceiptIssued) error {
	return e.record(ctx, ActionReceiptIssued, SeverityInfo, OutcomeSuccess,
		ResourcePayment, evt.ReceiptID.String(), CategoryPayment, nil,
		"payer", evt.Payer,
		"payee", evt.Payee,
		"seq", evt.Seq,
		"amount", evt.Amount.String(),
		"payment_type", evt.PaymentType,
	)
}

// ──────────────────────────────────────────────────
// Discount hooks
// ──────────────────────────────────────────────────

// OnDiscountApplied implements plugin.OnDiscountApplied.
func (e *Extension) OnDiscountApplied(ctx context.Context, evt *event.DiscountApplied) error {
	return e.record(ctx, ActionDiscountApplied, SeverityInfo, OutcomeSuccess,
		ResourceDiscount, evt.User, CategoryDiscount, nil,
		"user", evt.User,
		"plan_id", evt.PlanID,
		"original", evt.OriginalPrice.String(),
		"discounted", evt.DiscountedPrice.String(),
		"month", evt.Month,
	)
}

// OnDiscountCodeUsed implements plugin.OnDiscountCodeUsed.
func (e *Extension) OnDiscountCodeUsed(ctx context.Context, evt *event.DiscountCodeUsed) error {
	return e.record(ctx, ActionDiscountCodeUsed, SeverityInfo, OutcomeSuccess,
		ResourceDiscount, evt.User, CategoryDiscount, nil,
		"user", evt.User,
		"code", evt.Code,
		"percent", evt.Percent,
		"savings", evt.Savings.String(),
	)
}

// OnLoyaltyRewardApplied implements plugin.OnLoyaltyRewardApplied.
func (e *Extension) OnLoyaltyRewardApplied(ctx context.Context, evt *event.LoyaltyRewardApplied) error {
	return e.record(ctx, ActionLoyaltyRewardApplied, SeverityInfo, OutcomeSuccess,
		ResourceDiscount, evt.User, CategoryDiscount, nil,
		"user", evt.User,
		"plan_id", evt.PlanID,
		"subscription_count", evt.SubscriptionCount,
		"percent", evt.Percent,
		"savings", evt.Savings.String(),
	)
}

// ──────────────────────────────────────────────────
// Referral hooks
// ──────────────────────────────────────────────────

// OnReferralRewardPaid implements plugin.OnReferralRewardPaid.
func (e *Extension) OnReferralRewardPaid(ctx context.Context, evt *event.ReferralRewardPaid) error {
	return e.record(ctx, ActionReferralRewardPaid, SeverityInfo, OutcomeSuccess,
		ResourceReferral, evt.Referrer, CategoryPayment, nil,
		"referrer", evt.Referrer,
		"referee", evt.Referee,
		"plan_id", evt.PlanID,
		"reward", evt.Reward.String(),
	)
}

// ──────────────────────────────────────────────────
// Installment hooks
// ──────────────────────────────────────────────────

// OnInstallmentPlanCreated implements plugin.OnInstallmentPlanCreated.
func (e *Extension) OnInstallmentPlanCreated(ctx context.Context, evt *event.InstallmentPlanCreated) error {
	return e.record(ctx, ActionInstallmentPlanCreated, SeverityInfo, OutcomeSuccess,
		ResourceInstallment, evt.Payer, CategoryPayment, nil,
		"payer", evt.Payer,
		"plan_seq", evt.PlanSeq,
		"total", evt.TotalAmount.String(),
		"num_installments", evt.NumInstallments,
		"frequency_months", evt.FrequencyMonths,
	)
}

// OnInstallmentPaymentMade implements plugin.OnInstallmentPaymentMade.
func (e *Extension) OnInstallmentPaymentMade(ctx context.Context, evt *event.InstallmentPaymentMade) error {
	return e.record(ctx, ActionInstallmentPaymentMade, SeverityInfo, OutcomeSuccess,
		ResourceInstallment, evt.Payer, CategoryPayment, nil,
		"payer", evt.Payer,
		"plan_seq", evt.PlanSeq,
		"payment_number", evt.PaymentNumber,
		"amount", evt.Amount.String(),
		"completed", evt.Completed,
	)
}

// ──────────────────────────────────────────────────
// Escrow hooks
// ──────────────────────────────────────────────────

// OnEscrowCreated implements plugin.OnEscrowCreated.
func (e *Extension) OnEscrowCreated(ctx context.Context, evt *event.EscrowCreated) error {
	return e.record(ctx, ActionEscrowCreated, SeverityWarning, OutcomeSuccess,
		ResourceEscrow, evt.EscrowID.String(), CategoryDispute, nil,
		"payer", evt.Payer,
		"payee", evt.Payee,
		"seq", evt.Seq,
		"amount", evt.Amount.String(),
		"reason", evt.Reason,
	)
}

// OnEscrowResolved implements plugin.OnEscrowResolved.
func (e *Extension) OnEscrowResolved(ctx context.Context, evt *event.EscrowResolved) error {
	return e.record(ctx, ActionEscrowResolved, SeverityInfo, OutcomeSuccess,
		ResourceEscrow, evt.EscrowID.String(), CategoryDispute, nil,
		"seq", evt.Seq,
		"released_to_payee", evt.ReleasedToPayee,
		"notes", evt.Notes,
	)
}

// ──────────────────────────────────────────────────
// Oracle hooks
// ──────────────────────────────────────────────────

// OnPriceFeedUpdated implements plugin.OnPriceFeedUpdated.
func (e *Extension) OnPriceFeedUpdated(ctx context.Context, evt *event.PriceFeedUpdated) error {
	return e.record(ctx, ActionPriceFeedUpdated, SeverityInfo, OutcomeSuccess,
		ResourcePriceFeed, "", CategoryOracle, nil,
		"apt_to_usd", evt.AptToUSD,
		"usdc_to_usd", evt.UsdcToUSD,
		"usdt_to_usd", evt.UsdtToUSD,
		"updated_at", evt.UpdatedAt,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
