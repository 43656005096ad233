package subledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/types"
)

func TestReferralReward(t *testing.T) {
	rec := &recorder{}
	e, bk, _ := newTestEngine(t, subledger.WithPlugin(rec))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))
	fund(bk, "ref", types.APT(0))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", "ref"); err != nil {
		t.Fatal(err)
	}

	// Default reward is 10% of the referee's first payment, paid out of
	// the plan admin's balance.
	if got := balance(t, bk, "ref", types.TokenAPT); got != 10 {
		t.Errorf("referrer balance = %d, want 10", got)
	}
	if got := balance(t, bk, "admin", types.TokenAPT); got != 90 {
		t.Errorf("admin balance = %d, want 90", got)
	}

	stats, err := e.ReferralStatsOf(ctx, "ref")
	if err != nil {
		t.Fatal(err)
	}
	if stats.ActiveReferrals != 1 {
		t.Errorf("active referrals = %d, want 1", stats.ActiveReferrals)
	}
	if stats.TotalRewardsEarned != 10 {
		t.Errorf("total rewards = %d, want 10", stats.TotalRewardsEarned)
	}
	if len(stats.ReferredUsers) != 1 || stats.ReferredUsers[0] != "alice" {
		t.Errorf("referred users = %v", stats.ReferredUsers)
	}

	refereeStats, err := e.ReferralStatsOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if refereeStats.Referrer != "ref" {
		t.Errorf("referee's referrer = %q, want ref", refereeStats.Referrer)
	}

	if len(rec.rewards) != 1 {
		t.Fatalf("got %d ReferralRewardPaid events, want 1", len(rec.rewards))
	}
	if !rec.rewards[0].Reward.Equal(types.APT(10)) {
		t.Errorf("reward event = %s, want 10", rec.rewards[0].Reward)
	}
}

func TestReferralRewardPercentOverride(t *testing.T) {
	e, bk, _ := newTestEngine(t, subledger.WithReferralRewardPercent(25))
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))
	fund(bk, "ref", types.APT(0))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", "ref"); err != nil {
		t.Fatal(err)
	}
	if got := balance(t, bk, "ref", types.TokenAPT); got != 25 {
		t.Errorf("referrer balance = %d, want 25", got)
	}
}

func TestSelfReferralIgnored(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ReferralStatsOf(ctx, "alice"); !errors.Is(err, subledger.ErrNotFound) {
		t.Errorf("self referral should record nothing, got %v", err)
	}
}

func TestReferralUnregisteredReferrer(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))

	// Enrollment succeeds even though the payout is skipped: the
	// relationship is still recorded, earned totals are not.
	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", "ref"); err != nil {
		t.Fatal(err)
	}

	stats, err := e.ReferralStatsOf(ctx, "ref")
	if err != nil {
		t.Fatal(err)
	}
	if stats.ActiveReferrals != 1 {
		t.Errorf("active referrals = %d, want 1", stats.ActiveReferrals)
	}
	if stats.TotalRewardsEarned != 0 {
		t.Errorf("total rewards = %d, want 0 for skipped payout", stats.TotalRewardsEarned)
	}
}

func TestReferralActiveCountDropsOnCancel(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	fund(bk, "admin", types.APT(0))
	fund(bk, "alice", types.APT(100))
	fund(bk, "ref", types.APT(0))

	if _, err := e.Enroll(ctx, "alice", "admin", "basic", "", "ref"); err != nil {
		t.Fatal(err)
	}
	if err := e.HardCancel(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	stats, err := e.ReferralStatsOf(ctx, "ref")
	if err != nil {
		t.Fatal(err)
	}
	if stats.ActiveReferrals != 0 {
		t.Errorf("active referrals = %d, want 0 after cancel", stats.ActiveReferrals)
	}
	// Earned totals never decrease.
	if stats.TotalRewardsEarned != 10 {
		t.Errorf("total rewards = %d, want 10", stats.TotalRewardsEarned)
	}
}
