package subledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/installment"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/types"
)

func TestCreateInstallmentPlan(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()

	p, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(120), 12, installment.Monthly)
	if err != nil {
		t.Fatal(err)
	}
	if p.Seq != 1 {
		t.Errorf("seq = %d, want 1", p.Seq)
	}
	if !p.InstallmentAmount.Equal(types.USDC(10)) {
		t.Errorf("installment amount = %s, want 10", p.InstallmentAmount)
	}
	if p.NextPaymentDue != clk.now+installment.SecondsPerMonth {
		t.Errorf("next due = %d, want one month out", p.NextPaymentDue)
	}

	// A payer can hold several plans.
	p2, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(90), 3, installment.Quarterly)
	if err != nil {
		t.Fatal(err)
	}
	if p2.Seq != 2 {
		t.Errorf("second plan seq = %d, want 2", p2.Seq)
	}

	plans, err := e.InstallmentPlansOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 2 {
		t.Errorf("got %d plans, want 2", len(plans))
	}

	t.Run("Validation", func(t *testing.T) {
		if _, err := e.CreateInstallmentPlan(ctx, "", types.USDC(120), 12, installment.Monthly); !errors.Is(err, subledger.ErrInvalidInput) {
			t.Errorf("empty payer: got %v", err)
		}
		if _, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(0), 12, installment.Monthly); !errors.Is(err, subledger.ErrInvalidAmount) {
			t.Errorf("zero total: got %v", err)
		}
		if _, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(120), 0, installment.Monthly); !errors.Is(err, subledger.ErrInvalidInstallmentCount) {
			t.Errorf("count 0: got %v", err)
		}
		if _, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(120), 25, installment.Monthly); !errors.Is(err, subledger.ErrInvalidInstallmentCount) {
			t.Errorf("count 25: got %v", err)
		}
		if _, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(120), 12, installment.Frequency(5)); !errors.Is(err, subledger.ErrInvalidFrequency) {
			t.Errorf("frequency 5: got %v", err)
		}
	})
}

func TestPayInstallment(t *testing.T) {
	rec := &recorder{}
	e, bk, clk := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	fund(bk, "alice", types.USDC(120))
	fund(bk, "shop", types.USDC(0))

	p, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(120), 12, installment.Monthly)
	if err != nil {
		t.Fatal(err)
	}

	firstDue := p.NextPaymentDue
	for i := 1; i <= 12; i++ {
		p, err = e.PayInstallment(ctx, "alice", 1, "shop")
		if err != nil {
			t.Fatalf("payment %d: %v", i, err)
		}
		if p.PaymentsMade != i {
			t.Fatalf("payments made = %d, want %d", p.PaymentsMade, i)
		}
		clk.advance(installment.SecondsPerMonth)
	}

	if !p.Completed {
		t.Error("plan should be complete after the final payment")
	}
	if p.RemainingPayments() != 0 {
		t.Errorf("remaining = %d, want 0", p.RemainingPayments())
	}
	// The due date stops advancing on completion.
	if p.NextPaymentDue != firstDue+11*installment.SecondsPerMonth {
		t.Errorf("next due = %d, want %d", p.NextPaymentDue, firstDue+11*installment.SecondsPerMonth)
	}

	if got := balance(t, bk, "shop", types.TokenUSDC); got != 120 {
		t.Errorf("shop balance = %d, want 120", got)
	}
	if got := balance(t, bk, "alice", types.TokenUSDC); got != 0 {
		t.Errorf("alice balance = %d, want 0", got)
	}

	// Payment 13 on a completed plan fails.
	if _, err := e.PayInstallment(ctx, "alice", 1, "shop"); !errors.Is(err, subledger.ErrInstallmentAlreadyComplete) {
		t.Errorf("expected ErrInstallmentAlreadyComplete, got %v", err)
	}

	// Each payment issued a receipt referencing the plan.
	receipts, err := e.ReceiptsOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(receipts) != 12 {
		t.Fatalf("got %d receipts, want 12", len(receipts))
	}
	for i, r := range receipts {
		if r.Seq != int64(i+1) {
			t.Errorf("receipt %d seq = %d", i, r.Seq)
		}
		if r.PaymentType != payment.TypeInstallment {
			t.Errorf("receipt %d type = %s", i, r.PaymentType)
		}
	}

	if len(rec.receipts) != 12 {
		t.Errorf("got %d ReceiptIssued events, want 12", len(rec.receipts))
	}
}

func TestPayInstallmentInsufficientFunds(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	fund(bk, "alice", types.USDC(5))
	fund(bk, "shop", types.USDC(0))

	if _, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(120), 12, installment.Monthly); err != nil {
		t.Fatal(err)
	}

	if _, err := e.PayInstallment(ctx, "alice", 1, "shop"); !errors.Is(err, subledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Failed payment leaves the schedule untouched.
	plans, err := e.InstallmentPlansOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if plans[0].PaymentsMade != 0 {
		t.Errorf("payments made = %d, want 0", plans[0].PaymentsMade)
	}
}

func TestPayInstallmentUnknownPlan(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.PayInstallment(ctx, "alice", 7, "shop"); !errors.Is(err, subledger.ErrInstallmentNotFound) {
		t.Errorf("expected ErrInstallmentNotFound, got %v", err)
	}
}

func TestInstallmentRemainderNeverCollected(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	fund(bk, "alice", types.USDC(100))
	fund(bk, "shop", types.USDC(0))

	// 100 over 3 payments: floor is 33, the remaining 1 is never charged.
	p, err := e.CreateInstallmentPlan(ctx, "alice", types.USDC(100), 3, installment.Monthly)
	if err != nil {
		t.Fatal(err)
	}
	if !p.InstallmentAmount.Equal(types.USDC(33)) {
		t.Fatalf("installment amount = %s, want 33", p.InstallmentAmount)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.PayInstallment(ctx, "alice", 1, "shop"); err != nil {
			t.Fatal(err)
		}
	}
	if got := balance(t, bk, "shop", types.TokenUSDC); got != 99 {
		t.Errorf("shop collected %d, want 99", got)
	}
}
