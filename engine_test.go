package subledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/xraph/subledger"
	bankmem "github.com/xraph/subledger/bank/memory"
	"github.com/xraph/subledger/event"
	storemem "github.com/xraph/subledger/store/memory"
	"github.com/xraph/subledger/types"
)

// Fixed points on the simplified 365-day billing calendar. Day 5 falls
// in January (no seasonal discount); day 65 falls in March (30% off).
const (
	day          = int64(86400)
	tsJanuary    = 5 * day
	tsMarch      = 65 * day
	planDuration = 30 * day
)

// clock is an injectable engine clock for tests.
type clock struct{ now int64 }

func (c *clock) Now() int64            { return c.now }
func (c *clock) advance(seconds int64) { c.now += seconds }

// newTestEngine builds an engine on the in-memory store and bank with a
// controllable clock starting in January.
func newTestEngine(t *testing.T, opts ...subledger.Option) (*subledger.Engine, *bankmem.Bank, *clock) {
	t.Helper()

	bk := bankmem.New()
	clk := &clock{now: tsJanuary}

	base := []subledger.Option{
		subledger.WithClock(clk.Now),
		subledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	e := subledger.New(storemem.New(), bk, append(base, opts...)...)

	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = e.Stop() })

	return e, bk, clk
}

// recorder captures emitted events for assertions.
type recorder struct {
	seasonal []*event.DiscountApplied
	codes    []*event.DiscountCodeUsed
	loyalty  []*event.LoyaltyRewardApplied
	failed   []*event.PaymentFailed
	rewards  []*event.ReferralRewardPaid
	refunds  []*event.RefundIssued
	receipts []*event.ReceiptIssued
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnDiscountApplied(_ context.Context, e *event.DiscountApplied) error {
	r.seasonal = append(r.seasonal, e)
	return nil
}

func (r *recorder) OnDiscountCodeUsed(_ context.Context, e *event.DiscountCodeUsed) error {
	r.codes = append(r.codes, e)
	return nil
}

func (r *recorder) OnLoyaltyRewardApplied(_ context.Context, e *event.LoyaltyRewardApplied) error {
	r.loyalty = append(r.loyalty, e)
	return nil
}

func (r *recorder) OnPaymentFailed(_ context.Context, e *event.PaymentFailed) error {
	r.failed = append(r.failed, e)
	return nil
}

func (r *recorder) OnReferralRewardPaid(_ context.Context, e *event.ReferralRewardPaid) error {
	r.rewards = append(r.rewards, e)
	return nil
}

func (r *recorder) OnRefundIssued(_ context.Context, e *event.RefundIssued) error {
	r.refunds = append(r.refunds, e)
	return nil
}

func (r *recorder) OnReceiptIssued(_ context.Context, e *event.ReceiptIssued) error {
	r.receipts = append(r.receipts, e)
	return nil
}

// fund deposits an amount for the account, registering it for the token.
func fund(b *bankmem.Bank, account string, amount types.Amount) {
	b.Deposit(account, amount)
}

func balance(t *testing.T, b *bankmem.Bank, account string, token types.TokenType) int64 {
	t.Helper()
	bal, err := b.Balance(context.Background(), account, token)
	if err != nil {
		t.Fatalf("balance of %s: %v", account, err)
	}
	return bal.Units
}
