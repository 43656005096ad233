// Package observability provides a metrics extension for Subledger that
// records lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                   = (*MetricsExtension)(nil)
	_ plugin.OnInit                   = (*MetricsExtension)(nil)
	_ plugin.OnPlanCreated            = (*MetricsExtension)(nil)
	_ plugin.OnSubscribed             = (*MetricsExtension)(nil)
	_ plugin.OnCanceled               = (*MetricsExtension)(nil)
	_ plugin.OnGracePeriodStarted     = (*MetricsExtension)(nil)
	_ plugin.OnRefundIssued           = (*MetricsExtension)(nil)
	_ plugin.OnPaymentReceived        = (*MetricsExtension)(nil)
	_ plugin.OnPaymentFailed          = (*MetricsExtension)(nil)
	_ plugin.OnMultiTokenPayment      = (*MetricsExtension)(nil)
	_ plugin.OnReceiptIssued          = (*MetricsExtension)(nil)
	_ plugin.OnDiscountApplied        = (*MetricsExtension)(nil)
	_ plugin.OnDiscountCodeUsed       = (*MetricsExtension)(nil)
	_ plugin.OnLoyaltyRewardApplied   = (*MetricsExtension)(nil)
	_ plugin.OnReferralRewardPaid     = (*MetricsExtension)(nil)
	_ plugin.OnInstallmentPlanCreated = (*MetricsExtension)(nil)
	_ plugin.OnInstallmentPaymentMade = (*MetricsExtension)(nil)
	_ plugin.OnEscrowCreated          = (*MetricsExtension)(nil)
	_ plugin.OnEscrowResolved         = (*MetricsExtension)(nil)
	_ plugin.OnPriceFeedUpdated       = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Subledger plugin to automatically track billing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Catalog metrics
	PlanCreated Counter

	// Subscription metrics
	Subscribed         Counter
	Canceled           Counter
	GracePeriodStarted Counter
	RefundIssued       Counter
	RefundUnits        Histogram

	// Payment metrics
	PaymentReceived   Counter
	PaymentFailed     Counter
	MultiTokenPayment Counter
	ReceiptIssued     Counter
	PaymentUnits      Histogram

	// Discount metrics
	SeasonalDiscounts Counter
	CodeDiscounts     Counter
	LoyaltyDiscounts  Counter
	SavingsUnits      Histogram

	// Referral metrics
	ReferralRewardsPaid Counter
	ReferralRewardUnits Histogram

	// Installment metrics
	InstallmentPlansCreated Counter
	InstallmentPayments     Counter
	InstallmentsCompleted   Counter

	// Escrow metrics
	EscrowsOpened   Counter
	EscrowsResolved Counter

	// Oracle metrics
	PriceFeedUpdates Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Catalog metrics
		PlanCreated: factory.Counter("subledger.plan.created"),

		// Subscription metrics
		Subscribed:         factory.Counter("subledger.subscription.created"),
		Canceled:           factory.Counter("subledger.subscription.canceled"),
		GracePeriodStarted: factory.Counter("subledger.subscription.grace_started"),
		RefundIssued:       factory.Counter("subledger.subscription.refund_issued"),
		RefundUnits:        factory.Histogram("subledger.subscription.refund_units"),

		// Payment metrics
		PaymentReceived:   factory.Counter("subledger.payment.received"),
		PaymentFailed:     factory.Counter("subledger.payment.failed"),
		MultiTokenPayment: factory.Counter("subledger.payment.multi_token"),
		ReceiptIssued:     factory.Counter("subledger.payment.receipts"),
		PaymentUnits:      factory.Histogram("subledger.payment.units"),

		// Discount metrics
		SeasonalDiscounts: factory.Counter("subledger.discount.seasonal"),
		CodeDiscounts:     factory.Counter("subledger.discount.code"),
		LoyaltyDiscounts:  factory.Counter("subledger.discount.loyalty"),
		SavingsUnits:      factory.Histogram("subledger.discount.savings_units"),

		// Referral metrics
		ReferralRewardsPaid: factory.Counter("subledger.referral.rewards_paid"),
		ReferralRewardUnits: factory.Histogram("subledger.referral.reward_units"),

		// Installment metrics
		InstallmentPlansCreated: factory.Counter("subledger.installment.plans_created"),
		InstallmentPayments:     factory.Counter("subledger.installment.payments"),
		InstallmentsCompleted:   factory.Counter("subledger.installment.completed"),

		// Escrow metrics
		EscrowsOpened:   factory.Counter("subledger.escrow.opened"),
		EscrowsResolved: factory.Counter("subledger.escrow.resolved"),

		// Oracle metrics
		PriceFeedUpdates: factory.Counter("subledger.price_feed.updates"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Catalog lifecycle hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (m *MetricsExtension) OnPlanCreated(_ context.Context, _ *event.PlanCreated) error {
	m.PlanCreated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscribed implements plugin.OnSubscribed.
func (m *MetricsExtension) OnSubscribed(_ context.Context, _ *event.Subscribed) error {
	m.Subscribed.Inc()
	return nil
}

// OnCanceled implements plugin.OnCanceled.
func (m *MetricsExtension) OnCanceled(_ context.Context, _ *event.Canceled) error {
	m.Canceled.Inc()
	return nil
}

// OnGracePeriodStarted implements plugin.OnGracePeriodStarted.
func (m *MetricsExtension) OnGracePeriodStarted(_ context.Context, _ *event.GracePeriodStarted) error {
	m.GracePeriodStarted.Inc()
	return nil
}

// OnRefundIssued implements plugin.OnRefundIssued.
func (m *MetricsExtension) OnRefundIssued(_ context.Context, e *event.RefundIssued) error {
	m.RefundIssued.Inc()
	m.RefundUnits.Observe(float64(e.RefundAmount.Units))
	return nil
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnPaymentReceived implements plugin.OnPaymentReceived.
func (m *MetricsExtension) OnPaymentReceived(_ context.Context, e *event.PaymentReceived) error {
	m.PaymentReceived.Inc()
	m.PaymentUnits.Observe(float64(e.Amount.Units))
	return nil
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (m *MetricsExtension) OnPaymentFailed(_ context.Context, _ *event.PaymentFailed) error {
	m.PaymentFailed.Inc()
	return nil
}

// OnMultiTokenPayment implements plugin.OnMultiTokenPayment.
func (m *MetricsExtension) OnMultiTokenPayment(_ context.Context, e *event.MultiTokenPaymentMade) error {
	m.MultiTokenPayment.Inc()
	m.PaymentUnits.Observe(float64(e.Amount.Units))
	return nil
}

// OnReceiptIssued implements plugin.OnReceiptIssued.
func (m *MetricsExtension) OnReceiptIssued(_ context.Context, _ *event.ReceiptIssued) error {
	m.ReceiptIssued.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Discount lifecycle hooks
// ──────────────────────────────────────────────────

// OnDiscountApplied implements plugin.OnDiscountApplied.
func (m *MetricsExtension) OnDiscountApplied(_ context.Context, e *event.DiscountApplied) error {
	m.SeasonalDiscounts.Inc()
	m.SavingsUnits.Observe(float64(e.OriginalPrice.Units - e.DiscountedPrice.Units))
	return nil
}

// OnDiscountCodeUsed implements plugin.OnDiscountCodeUsed.
func (m *MetricsExtension) OnDiscountCodeUsed(_ context.Context, e *event.DiscountCodeUsed) error {
	m.CodeDiscounts.Inc()
	m.SavingsUnits.Observe(float64(e.Savings.Units))
	return nil
}

// OnLoyaltyRewardApplied implements plugin.OnLoyaltyRewardApplied.
func (m *MetricsExtension) OnLoyaltyRewardApplied(_ context.Context, e *event.LoyaltyRewardApplied) error {
	m.LoyaltyDiscounts.Inc()
	m.SavingsUnits.Observe(float64(e.Savings.Units))
	return nil
}

// ──────────────────────────────────────────────────
// Referral lifecycle hooks
// ──────────────────────────────────────────────────

// OnReferralRewardPaid implements plugin.OnReferralRewardPaid.
func (m *MetricsExtension) OnReferralRewardPaid(_ context.Context, e *event.ReferralRewardPaid) error {
	m.ReferralRewardsPaid.Inc()
	m.ReferralRewardUnits.Observe(float64(e.Reward.Units))
	return nil
}

// ──────────────────────────────────────────────────
// Installment lifecycle hooks
// ──────────────────────────────────────────────────

// OnInstallmentPlanCreated implements plugin.OnInstallmentPlanCreated.
func (m *MetricsExtension) OnInstallmentPlanCreated(_ context.Context, _ *event.InstallmentPlanCreated) error {
	m.InstallmentPlansCreated.Inc()
	return nil
}

// OnInstallmentPaymentMade implements plugin.OnInstallmentPaymentMade.
func (m *MetricsExtension) OnInstallmentPaymentMade(_ context.Context, e *event.InstallmentPaymentMade) error {
	m.InstallmentPayments.Inc()
	if e.Completed {
		m.InstallmentsCompleted.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Escrow lifecycle hooks
// ──────────────────────────────────────────────────

// OnEscrowCreated implements plugin.OnEscrowCreated.
func (m *MetricsExtension) OnEscrowCreated(_ context.Context, _ *event.EscrowCreated) error {
	m.EscrowsOpened.Inc()
	return nil
}

// OnEscrowResolved implements plugin.OnEscrowResolved.
func (m *MetricsExtension) OnEscrowResolved(_ context.Context, _ *event.EscrowResolved) error {
	m.EscrowsResolved.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Oracle lifecycle hooks
// ──────────────────────────────────────────────────

// OnPriceFeedUpdated implements plugin.OnPriceFeedUpdated.
func (m *MetricsExtension) OnPriceFeedUpdated(_ context.Context, _ *event.PriceFeedUpdated) error {
	m.PriceFeedUpdates.Inc()
	return nil
}
