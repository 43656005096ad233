package subledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/types"
)

func TestEnroll(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	sub, err := e.Enroll(ctx, "alice", "admin", "basic", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if sub.ExpiresAt != tsJanuary+planDuration {
		t.Errorf("expires_at = %d, want %d", sub.ExpiresAt, tsJanuary+planDuration)
	}
	if !sub.LastPayment.Equal(types.APT(100)) {
		t.Errorf("last payment = %s, want full price", sub.LastPayment)
	}
	if got := balance(t, bk, "alice", types.TokenAPT); got != 0 {
		t.Errorf("alice balance = %d, want 0", got)
	}
	if got := balance(t, bk, "admin", types.TokenAPT); got != 100 {
		t.Errorf("admin balance = %d, want 100", got)
	}

	active, err := e.IsActive(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !active {
		t.Error("alice should be active")
	}

	t.Run("DoubleSubscribe", func(t *testing.T) {
		fund(bk, "alice", types.APT(100))
		_, err := e.Enroll(ctx, "alice", "admin", "basic", "", "")
		if !errors.Is(err, subledger.ErrAlreadySubscribed) {
			t.Errorf("expected ErrAlreadySubscribed, got %v", err)
		}
	})

	t.Run("UnknownPlan", func(t *testing.T) {
		_, err := e.Enroll(ctx, "bob", "admin", "missing", "", "")
		if !errors.Is(err, subledger.ErrPlanNotFound) {
			t.Errorf("expected ErrPlanNotFound, got %v", err)
		}
	})
}

func TestEnrollSeasonalDiscount(t *testing.T) {
	rec := &recorder{}
	e, bk, clk := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	clk.now = tsMarch

	sub, err := e.Enroll(ctx, "alice", "admin", "basic", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.LastPayment.Equal(types.APT(70)) {
		t.Errorf("March enrollment paid %s, want 70 octas", sub.LastPayment)
	}
	if got := balance(t, bk, "alice", types.TokenAPT); got != 30 {
		t.Errorf("alice balance = %d, want 30", got)
	}

	if len(rec.seasonal) != 1 {
		t.Fatalf("got %d DiscountApplied events, want 1", len(rec.seasonal))
	}
	ev := rec.seasonal[0]
	if ev.Month != 3 {
		t.Errorf("event month = %d, want 3", ev.Month)
	}
	if !ev.DiscountedPrice.Equal(types.APT(70)) {
		t.Errorf("event discounted price = %s, want 70", ev.DiscountedPrice)
	}
}

func TestEnrollDiscountCode(t *testing.T) {
	rec := &recorder{}
	e, bk, clk := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateDiscountCode(ctx, "admin", "HALF", 50, tsMarch+365*day, 0); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	clk.now = tsMarch

	// The 50% code beats the 30% seasonal discount.
	sub, err := e.Enroll(ctx, "alice", "admin", "basic", "HALF", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.LastPayment.Equal(types.APT(50)) {
		t.Errorf("paid %s, want 50 octas", sub.LastPayment)
	}

	if len(rec.codes) != 1 {
		t.Fatalf("got %d DiscountCodeUsed events, want 1", len(rec.codes))
	}
	if rec.codes[0].Code != "HALF" || rec.codes[0].Percent != 50 {
		t.Errorf("unexpected code event: %+v", rec.codes[0])
	}
	if len(rec.seasonal) != 0 {
		t.Error("a winning code must suppress the seasonal event")
	}

	c, err := e.GetDiscountCode(ctx, "admin", "HALF")
	if err != nil {
		t.Fatal(err)
	}
	if c.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1", c.UsageCount)
	}
}

func TestEnrollLosingCodeStillRedeems(t *testing.T) {
	rec := &recorder{}
	e, bk, clk := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateDiscountCode(ctx, "admin", "TEN", 10, tsMarch+365*day, 0); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	clk.now = tsMarch

	// Seasonal 30% wins over the 10% code, but the code is still consumed
	// and neither discount event fires.
	sub, err := e.Enroll(ctx, "alice", "admin", "basic", "TEN", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.LastPayment.Equal(types.APT(70)) {
		t.Errorf("paid %s, want 70 octas", sub.LastPayment)
	}

	c, err := e.GetDiscountCode(ctx, "admin", "TEN")
	if err != nil {
		t.Fatal(err)
	}
	if c.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1", c.UsageCount)
	}
	if len(rec.codes) != 0 || len(rec.seasonal) != 0 {
		t.Errorf("losing code fired events: codes=%d seasonal=%d", len(rec.codes), len(rec.seasonal))
	}
}

func TestEnrollInvalidCodeIgnored(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	// Unknown code is ignored; January has no seasonal discount.
	sub, err := e.Enroll(ctx, "alice", "admin", "basic", "NOPE", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.LastPayment.Equal(types.APT(100)) {
		t.Errorf("paid %s, want full price", sub.LastPayment)
	}
}

func TestEnrollExhaustedCode(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateDiscountCode(ctx, "admin", "ONCE", 50, tsJanuary+365*day, 1); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))
	fund(bk, "bob", types.APT(100))

	sub, err := e.Enroll(ctx, "alice", "admin", "basic", "ONCE", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.LastPayment.Equal(types.APT(50)) {
		t.Errorf("alice paid %s, want 50", sub.LastPayment)
	}

	// Usage cap reached: the code no longer counts, bob pays full price.
	sub, err = e.Enroll(ctx, "bob", "admin", "basic", "ONCE", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.LastPayment.Equal(types.APT(100)) {
		t.Errorf("bob paid %s, want full price", sub.LastPayment)
	}
}

func TestEnrollLoyaltyDiscount(t *testing.T) {
	rec := &recorder{}
	e, bk, _ := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(300))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := e.HardCancel(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	// Second enrollment in January: loyalty 15% wins.
	sub, err := e.Enroll(ctx, "alice", "admin", "basic", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.LastPayment.Equal(types.APT(85)) {
		t.Errorf("returning subscriber paid %s, want 85 octas", sub.LastPayment)
	}

	if len(rec.loyalty) != 1 {
		t.Fatalf("got %d LoyaltyRewardApplied events, want 1", len(rec.loyalty))
	}
	// The event carries the count the grant was based on, not the
	// incremented count recorded by the enrollment itself.
	if rec.loyalty[0].SubscriptionCount != 1 {
		t.Errorf("event subscription count = %d, want 1", rec.loyalty[0].SubscriptionCount)
	}

	if err := e.HardCancel(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}
	if len(rec.loyalty) != 2 {
		t.Fatalf("got %d LoyaltyRewardApplied events, want 2", len(rec.loyalty))
	}
	if rec.loyalty[1].SubscriptionCount != 2 {
		t.Errorf("third enrollment event count = %d, want 2", rec.loyalty[1].SubscriptionCount)
	}
}

func TestEnrollInsufficientFunds(t *testing.T) {
	rec := &recorder{}
	e, bk, _ := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(30))

	_, err := e.Enroll(ctx, "alice", "admin", "basic", "", "")
	if !errors.Is(err, subledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// All-or-nothing: nothing was recorded beyond the failure event.
	if _, err := e.SubscriptionOf(ctx, "alice"); !errors.Is(err, subledger.ErrSubscriptionNotFound) {
		t.Errorf("failed enrollment left a subscription: %v", err)
	}
	if got := balance(t, bk, "alice", types.TokenAPT); got != 30 {
		t.Errorf("alice balance = %d, want untouched 30", got)
	}
	if len(rec.failed) != 1 {
		t.Fatalf("got %d PaymentFailed events, want 1", len(rec.failed))
	}
	if rec.failed[0].Reason != "insufficient balance" {
		t.Errorf("failure reason = %q", rec.failed[0].Reason)
	}
}

func TestEnrollUnregisteredPayer(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))

	_, err := e.Enroll(ctx, "alice", "admin", "basic", "", "")
	if !errors.Is(err, subledger.ErrCoinNotRegistered) {
		t.Errorf("expected ErrCoinNotRegistered, got %v", err)
	}
}

func TestCancelAndRenew(t *testing.T) {
	e, bk, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(300))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}

	if err := e.Cancel(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	sub, err := e.SubscriptionOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !sub.InGracePeriod {
		t.Error("soft cancel should start a grace period")
	}
	if sub.GraceEndsAt != clk.now+subledger.DefaultGracePeriod {
		t.Errorf("grace ends at %d, want %d", sub.GraceEndsAt, clk.now+subledger.DefaultGracePeriod)
	}

	// Renewal within the grace window restores the subscription and
	// extends from the current expiry at full price.
	clk.advance(2 * day)
	oldExpiry := sub.ExpiresAt

	renewed, err := e.Renew(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if renewed.InGracePeriod || renewed.GraceEndsAt != 0 {
		t.Error("renewal should clear the grace period")
	}
	if renewed.ExpiresAt != oldExpiry+planDuration {
		t.Errorf("expires_at = %d, want %d", renewed.ExpiresAt, oldExpiry+planDuration)
	}
	if !renewed.LastPayment.Equal(types.APT(100)) {
		t.Errorf("renewal paid %s, want full price", renewed.LastPayment)
	}
}

func TestRenewAfterExpiry(t *testing.T) {
	e, bk, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(200))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}

	// Lapsed subscription: the new period starts now, not at the old expiry.
	clk.advance(45 * day)

	sub, err := e.Renew(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if sub.ExpiresAt != clk.now+planDuration {
		t.Errorf("expires_at = %d, want %d", sub.ExpiresAt, clk.now+planDuration)
	}
}

func TestHardCancel(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := e.HardCancel(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.SubscriptionOf(ctx, "alice"); !errors.Is(err, subledger.ErrSubscriptionNotFound) {
		t.Errorf("subscription should be gone, got %v", err)
	}
	if err := e.HardCancel(ctx, "alice"); !errors.Is(err, subledger.ErrNotSubscribed) {
		t.Errorf("expected ErrNotSubscribed, got %v", err)
	}
}

func TestCancelWithRefund(t *testing.T) {
	rec := &recorder{}
	e, bk, clk := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}

	// Halfway through a 30-day period: 15 unused days refund 50 octas.
	clk.advance(15 * day)

	if err := e.CancelWithRefund(ctx, "admin", "alice"); err != nil {
		t.Fatal(err)
	}

	if got := balance(t, bk, "alice", types.TokenAPT); got != 50 {
		t.Errorf("alice balance = %d, want 50 refund", got)
	}
	if got := balance(t, bk, "admin", types.TokenAPT); got != 50 {
		t.Errorf("admin balance = %d, want 50", got)
	}
	if _, err := e.SubscriptionOf(ctx, "alice"); !errors.Is(err, subledger.ErrSubscriptionNotFound) {
		t.Errorf("subscription should be gone, got %v", err)
	}

	if len(rec.refunds) != 1 {
		t.Fatalf("got %d RefundIssued events, want 1", len(rec.refunds))
	}
	if rec.refunds[0].DaysUnused != 15 {
		t.Errorf("days unused = %d, want 15", rec.refunds[0].DaysUnused)
	}

	t.Run("WrongAdmin", func(t *testing.T) {
		fund(bk, "bob", types.APT(100))
		if _, err := e.Enroll(ctx, "bob", "admin", "basic", "", ""); err != nil {
			t.Fatal(err)
		}
		if err := e.CancelWithRefund(ctx, "imposter", "bob"); !errors.Is(err, subledger.ErrNotAdmin) {
			t.Errorf("expected ErrNotAdmin, got %v", err)
		}
	})
}

func TestCancelWithRefundExpired(t *testing.T) {
	e, bk, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}

	// Nothing left to refund once the period has fully elapsed.
	clk.advance(31 * day)

	if err := e.CancelWithRefund(ctx, "admin", "alice"); err != nil {
		t.Fatal(err)
	}
	if got := balance(t, bk, "alice", types.TokenAPT); got != 0 {
		t.Errorf("alice balance = %d, want 0", got)
	}
}

func TestChangePlan(t *testing.T) {
	e, bk, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreatePlan(ctx, "admin", "premium", planDuration, types.APT(200)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(200))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}

	// Upgrade halfway through: 50 octas of unused credit against a
	// 100-octa pro-rated premium charge leaves 50 due.
	clk.advance(15 * day)

	sub, err := e.ChangePlan(ctx, "alice", "premium")
	if err != nil {
		t.Fatal(err)
	}
	if sub.PlanCode != "premium" {
		t.Errorf("plan code = %s, want premium", sub.PlanCode)
	}
	if !sub.LastPayment.Equal(types.APT(100)) {
		t.Errorf("last payment = %s, want 100 pro-rated", sub.LastPayment)
	}
	if got := balance(t, bk, "alice", types.TokenAPT); got != 50 {
		t.Errorf("alice balance = %d, want 50", got)
	}
	if sub.ExpiresAt != tsJanuary+planDuration {
		t.Errorf("plan change moved the expiry: %d", sub.ExpiresAt)
	}
}

func TestChangePlanDowngrade(t *testing.T) {
	e, bk, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreatePlan(ctx, "admin", "premium", planDuration, types.APT(200)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(200))

	if _, err := e.Enroll(ctx, "alice", "admin", "premium", "", ""); err != nil {
		t.Fatal(err)
	}

	// Downgrade halfway: 100 credit vs 50 charge returns 50 to alice.
	clk.advance(15 * day)

	sub, err := e.ChangePlan(ctx, "alice", "basic")
	if err != nil {
		t.Fatal(err)
	}
	if sub.PlanCode != "basic" {
		t.Errorf("plan code = %s, want basic", sub.PlanCode)
	}
	if got := balance(t, bk, "alice", types.TokenAPT); got != 50 {
		t.Errorf("alice balance = %d, want 50 returned", got)
	}
}

func TestChangePlanRefundSkippedWhenAdminDrained(t *testing.T) {
	e, bk, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreatePlan(ctx, "admin", "premium", planDuration, types.APT(200)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(200))
	fund(bk, "sink", types.APT(0))

	if _, err := e.Enroll(ctx, "alice", "admin", "premium", "", ""); err != nil {
		t.Fatal(err)
	}

	// Drain the admin so the downgrade's 50-octa refund cannot be covered.
	if err := bk.Transfer(ctx, "admin", "sink", types.APT(200)); err != nil {
		t.Fatal(err)
	}

	clk.advance(15 * day)

	// The user-side charge failing would be fatal; the admin-side refund
	// failing is swallowed and the plan change still goes through.
	sub, err := e.ChangePlan(ctx, "alice", "basic")
	if err != nil {
		t.Fatal(err)
	}
	if sub.PlanCode != "basic" {
		t.Errorf("plan code = %s, want basic", sub.PlanCode)
	}
	if !sub.LastPayment.Equal(types.APT(50)) {
		t.Errorf("last payment = %s, want 50 pro-rated", sub.LastPayment)
	}
	if got := balance(t, bk, "alice", types.TokenAPT); got != 0 {
		t.Errorf("alice balance = %d, want 0 with the refund skipped", got)
	}
	if got := balance(t, bk, "admin", types.TokenAPT); got != 0 {
		t.Errorf("admin balance = %d, want 0", got)
	}
}

func TestTimeRemaining(t *testing.T) {
	e, bk, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	// No subscription yet.
	if rem, err := e.TimeRemaining(ctx, "alice"); err != nil || rem != 0 {
		t.Errorf("TimeRemaining = (%d, %v), want (0, nil)", rem, err)
	}

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", ""); err != nil {
		t.Fatal(err)
	}

	clk.advance(10 * day)
	if rem, err := e.TimeRemaining(ctx, "alice"); err != nil || rem != 20*day {
		t.Errorf("TimeRemaining = (%d, %v), want 20 days", rem, err)
	}

	clk.advance(25 * day)
	if rem, err := e.TimeRemaining(ctx, "alice"); err != nil || rem != 0 {
		t.Errorf("TimeRemaining after expiry = (%d, %v), want 0", rem, err)
	}
	if active, err := e.IsActive(ctx, "alice"); err != nil || active {
		t.Errorf("IsActive after expiry = (%v, %v), want false", active, err)
	}
}

func TestCreateDiscountCodeValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateDiscountCode(ctx, "admin", "SAVE", 20, tsJanuary+365*day, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateDiscountCode(ctx, "admin", "SAVE", 30, tsJanuary+365*day, 0); !errors.Is(err, subledger.ErrDiscountCodeExists) {
		t.Errorf("expected ErrDiscountCodeExists, got %v", err)
	}
	if _, err := e.CreateDiscountCode(ctx, "admin", "ZERO", 0, tsJanuary+365*day, 0); !errors.Is(err, subledger.ErrInvalidPercent) {
		t.Errorf("percent 0: got %v", err)
	}
	if _, err := e.CreateDiscountCode(ctx, "admin", "BIG", 101, tsJanuary+365*day, 0); !errors.Is(err, subledger.ErrInvalidPercent) {
		t.Errorf("percent 101: got %v", err)
	}
	if _, err := e.CreateDiscountCode(ctx, "admin", "NEG", 10, tsJanuary+365*day, -1); err == nil {
		t.Error("negative max uses should be rejected")
	}
}
