package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/subledger/event"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                   []OnInit
	onShutdown               []OnShutdown
	onPlanCreated            []OnPlanCreated
	onSubscribed             []OnSubscribed
	onCanceled               []OnCanceled
	onGracePeriodStarted     []OnGracePeriodStarted
	onRefundIssued           []OnRefundIssued
	onPaymentReceived        []OnPaymentReceived
	onPaymentFailed          []OnPaymentFailed
	onMultiTokenPayment      []OnMultiTokenPayment
	onReceiptIssued          []OnReceiptIssued
	onDiscountApplied        []OnDiscountApplied
	onDiscountCodeUsed       []OnDiscountCodeUsed
	onLoyaltyRewardApplied   []OnLoyaltyRewardApplied
	onReferralRewardPaid     []OnReferralRewardPaid
	onInstallmentPlanCreated []OnInstallmentPlanCreated
	onInstallmentPaymentMade []OnInstallmentPaymentMade
	onEscrowCreated          []OnEscrowCreated
	onEscrowResolved         []OnEscrowResolved
	onPriceFeedUpdated       []OnPriceFeedUpdated
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	var hooks []string
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
		hooks = append(hooks, "OnInit")
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
		hooks = append(hooks, "OnShutdown")
	}
	if v, ok := p.(OnPlanCreated); ok {
		r.onPlanCreated = append(r.onPlanCreated, v)
		hooks = append(hooks, "OnPlanCreated")
	}
	if v, ok := p.(OnSubscribed); ok {
		r.onSubscribed = append(r.onSubscribed, v)
		hooks = append(hooks, "OnSubscribed")
	}
	if v, ok := p.(OnCanceled); ok {
		r.onCanceled = append(r.onCanceled, v)
		hooks = append(hooks, "OnCanceled")
	}
	if v, ok := p.(OnGracePeriodStarted); ok {
		r.onGracePeriodStarted = append(r.onGracePeriodStarted, v)
		hooks = append(hooks, "OnGracePeriodStarted")
	}
	if v, ok := p.(OnRefundIssued); ok {
		r.onRefundIssued = append(r.onRefundIssued, v)
		hooks = append(hooks, "OnRefundIssued")
	}
	if v, ok := p.(OnPaymentReceived); ok {
		r.onPaymentReceived = append(r.onPaymentReceived, v)
		hooks = append(hooks, "OnPaymentReceived")
	}
	if v, ok := p.(OnPaymentFailed); ok {
		r.onPaymentFailed = append(r.onPaymentFailed, v)
		hooks = append(hooks, "OnPaymentFailed")
	}
	if v, ok := p.(OnMultiTokenPayment); ok {
		r.onMultiTokenPayment = append(r.onMultiTokenPayment, v)
		hooks = append(hooks, "OnMultiTokenPayment")
	}
	if v, ok := p.(OnReceiptIssued); ok {
		r.onReceiptIssued = append(r.onReceiptIssued, v)
		hooks = append(hooks, "OnReceiptIssued")
	}
	if v, ok := p.(OnDiscountApplied); ok {
		r.onDiscountApplied = append(r.onDiscountApplied, v)
		hooks = append(hooks, "OnDiscountApplied")
	}
	if v, ok := p.(OnDiscountCodeUsed); ok {
		r.onDiscountCodeUsed = append(r.onDiscountCodeUsed, v)
		hooks = append(hooks, "OnDiscountCodeUsed")
	}
	if v, ok := p.(OnLoyaltyRewardApplied); ok {
		r.onLoyaltyRewardApplied = append(r.onLoyaltyRewardApplied, v)
		hooks = append(hooks, "OnLoyaltyRewardApplied")
	}
	if v, ok := p.(OnReferralRewardPaid); ok {
		r.onReferralRewardPaid = append(r.onReferralRewardPaid, v)
		hooks = append(hooks, "OnReferralRewardPaid")
	}
	if v, ok := p.(OnInstallmentPlanCreated); ok {
		r.onInstallmentPlanCreated = append(r.onInstallmentPlanCreated, v)
		hooks = append(hooks, "OnInstallmentPlanCreated")
	}
	if v, ok := p.(OnInstallmentPaymentMade); ok {
		r.onInstallmentPaymentMade = append(r.onInstallmentPaymentMade, v)
		hooks = append(hooks, "OnInstallmentPaymentMade")
	}
	if v, ok := p.(OnEscrowCreated); ok {
		r.onEscrowCreated = append(r.onEscrowCreated, v)
		hooks = append(hooks, "OnEscrowCreated")
	}
	if v, ok := p.(OnEscrowResolved); ok {
		r.onEscrowResolved = append(r.onEscrowResolved, v)
		hooks = append(hooks, "OnEscrowResolved")
	}
	if v, ok := p.(OnPriceFeedUpdated); ok {
		r.onPriceFeedUpdated = append(r.onPriceFeedUpdated, v)
		hooks = append(hooks, "OnPriceFeedUpdated")
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"hooks", hooks,
	)

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit dispatches one hook invocation per cached plugin, logging and
// discarding failures. Plugins never block or fail the billing pipeline.
func emit[H Plugin](r *Registry, ctx context.Context, hook string, plugins []H, call func(H) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin hook failed",
				"hook", hook,
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()
	emit(r, ctx, "OnInit", plugins, func(p OnInit) error { return p.OnInit(ctx, engine) })
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()
	emit(r, ctx, "OnShutdown", plugins, func(p OnShutdown) error { return p.OnShutdown(ctx) })
}

// EmitPlanCreated emits a plan created event.
func (r *Registry) EmitPlanCreated(ctx context.Context, e *event.PlanCreated) {
	r.mu.RLock()
	plugins := r.onPlanCreated
	r.mu.RUnlock()
	emit(r, ctx, "OnPlanCreated", plugins, func(p OnPlanCreated) error { return p.OnPlanCreated(ctx, e) })
}

// EmitSubscribed emits a subscribed event.
func (r *Registry) EmitSubscribed(ctx context.Context, e *event.Subscribed) {
	r.mu.RLock()
	plugins := r.onSubscribed
	r.mu.RUnlock()
	emit(r, ctx, "OnSubscribed", plugins, func(p OnSubscribed) error { return p.OnSubscribed(ctx, e) })
}

// EmitCanceled emits a canceled event.
func (r *Registry) EmitCanceled(ctx context.Context, e *event.Canceled) {
	r.mu.RLock()
	plugins := r.onCanceled
	r.mu.RUnlock()
	emit(r, ctx, "OnCanceled", plugins, func(p OnCanceled) error { return p.OnCanceled(ctx, e) })
}

// EmitGracePeriodStarted emits a grace period started event.
func (r *Registry) EmitGracePeriodStarted(ctx context.Context, e *event.GracePeriodStarted) {
	r.mu.RLock()
	plugins := r.onGracePeriodStarted
	r.mu.RUnlock()
	emit(r, ctx, "OnGracePeriodStarted", plugins, func(p OnGracePeriodStarted) error { return p.OnGracePeriodStarted(ctx, e) })
}

// EmitRefundIssued emits a refund issued event.
func (r *Registry) EmitRefundIssued(ctx context.Context, e *event.RefundIssued) {
	r.mu.RLock()
	plugins := r.onRefundIssued
	r.mu.RUnlock()
	emit(r, ctx, "OnRefundIssued", plugins, func(p OnRefundIssued) error { return p.OnRefundIssued(ctx, e) })
}

// EmitPaymentReceived emits a payment received event.
func (r *Registry) EmitPaymentReceived(ctx context.Context, e *event.PaymentReceived) {
	r.mu.RLock()
	plugins := r.onPaymentReceived
	r.mu.RUnlock()
	emit(r, ctx, "OnPaymentReceived", plugins, func(p OnPaymentReceived) error { return p.OnPaymentReceived(ctx, e) })
}

// EmitPaymentFailed emits a payment failed event.
func (r *Registry) EmitPaymentFailed(ctx context.Context, e *event.PaymentFailed) {
	r.mu.RLock()
	plugins := r.onPaymentFailed
	r.mu.RUnlock()
	emit(r, ctx, "OnPaymentFailed", plugins, func(p OnPaymentFailed) error { return p.OnPaymentFailed(ctx, e) })
}

// EmitMultiTokenPayment emits a multi-token payment event.
func (r *Registry) EmitMultiTokenPayment(ctx context.Context, e *event.MultiTokenPaymentMade) {
	r.mu.RLock()
	plugins := r.onMultiTokenPayment
	r.mu.RUnlock()
	emit(r, ctx, "OnMultiTokenPayment", plugins, func(p OnMultiTokenPayment) error { return p.OnMultiTokenPayment(ctx, e) })
}

// EmitReceiptIssued emits a receipt issued event.
func (r *Registry) EmitReceiptIssued(ctx context.Context, e *event.ReceiptIssued) {
	r.mu.RLock()
	plugins := r.onReceiptIssued
	r.mu.RUnlock()
	emit(r, ctx, "OnReceiptIssued", plugins, func(p OnReceiptIssued) error { return p.OnReceiptIssued(ctx, e) })
}

// EmitDiscountApplied emits a discount applied event.
func (r *Registry) EmitDiscountApplied(ctx context.Context, e *event.DiscountApplied) {
	r.mu.RLock()
	plugins := r.onDiscountApplied
	r.mu.RUnlock()
	emit(r, ctx, "OnDiscountApplied", plugins, func(p OnDiscountApplied) error { return p.OnDiscountApplied(ctx, e) })
}

// EmitDiscountCodeUsed emits a discount code used event.
func (r *Registry) EmitDiscountCodeUsed(ctx context.Context, e *event.DiscountCodeUsed) {
	r.mu.RLock()
	plugins := r.onDiscountCodeUsed
	r.mu.RUnlock()
	emit(r, ctx, "OnDiscountCodeUsed", plugins, func(p OnDiscountCodeUsed) error { return p.OnDiscountCodeUsed(ctx, e) })
}

// EmitLoyaltyRewardApplied emits a loyalty reward applied event.
func (r *Registry) EmitLoyaltyRewardApplied(ctx context.Context, e *event.LoyaltyRewardApplied) {
	r.mu.RLock()
	plugins := r.onLoyaltyRewardApplied
	r.mu.RUnlock()
	emit(r, ctx, "OnLoyaltyRewardApplied", plugins, func(p OnLoyaltyRewardApplied) error { return p.OnLoyaltyRewardApplied(ctx, e) })
}

// EmitReferralRewardPaid emits a referral reward paid event.
func (r *Registry) EmitReferralRewardPaid(ctx context.Context, e *event.ReferralRewardPaid) {
	r.mu.RLock()
	plugins := r.onReferralRewardPaid
	r.mu.RUnlock()
	emit(r, ctx, "OnReferralRewardPaid", plugins, func(p OnReferralRewardPaid) error { return p.OnReferralRewardPaid(ctx, e) })
}

// EmitInstallmentPlanCreated emits an installment plan created event.
func (r *Registry) EmitInstallmentPlanCreated(ctx context.Context, e *event.InstallmentPlanCreated) {
	r.mu.RLock()
	plugins := r.onInstallmentPlanCreated
	r.mu.RUnlock()
	emit(r, ctx, "OnInstallmentPlanCreated", plugins, func(p OnInstallmentPlanCreated) error { return p.OnInstallmentPlanCreated(ctx, e) })
}

// EmitInstallmentPaymentMade emits an installment payment made event.
func (r *Registry) EmitInstallmentPaymentMade(ctx context.Context, e *event.InstallmentPaymentMade) {
	r.mu.RLock()
	plugins := r.onInstallmentPaymentMade
	r.mu.RUnlock()
	emit(r, ctx, "OnInstallmentPaymentMade", plugins, func(p OnInstallmentPaymentMade) error { return p.OnInstallmentPaymentMade(ctx, e) })
}

// EmitEscrowCreated emits an escrow created event.
func (r *Registry) EmitEscrowCreated(ctx context.Context, e *event.EscrowCreated) {
	r.mu.RLock()
	plugins := r.onEscrowCreated
	r.mu.RUnlock()
	emit(r, ctx, "OnEscrowCreated", plugins, func(p OnEscrowCreated) error { return p.OnEscrowCreated(ctx, e) })
}

// EmitEscrowResolved emits an escrow resolved event.
func (r *Registry) EmitEscrowResolved(ctx context.Context, e *event.EscrowResolved) {
	r.mu.RLock()
	plugins := r.onEscrowResolved
	r.mu.RUnlock()
	emit(r, ctx, "OnEscrowResolved", plugins, func(p OnEscrowResolved) error { return p.OnEscrowResolved(ctx, e) })
}

// EmitPriceFeedUpdated emits a price feed updated event.
func (r *Registry) EmitPriceFeedUpdated(ctx context.Context, e *event.PriceFeedUpdated) {
	r.mu.RLock()
	plugins := r.onPriceFeedUpdated
	r.mu.RUnlock()
	emit(r, ctx, "OnPriceFeedUpdated", plugins, func(p OnPriceFeedUpdated) error { return p.OnPriceFeedUpdated(ctx, e) })
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the billing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
