package subledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/types"
)

func TestCreateGroup(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "family", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}

	g, err := e.CreateGroup(ctx, "admin", "family", 3)
	if err != nil {
		t.Fatal(err)
	}
	if g.ExpiresAt != clk.now+planDuration {
		t.Errorf("group expires at %d, want %d", g.ExpiresAt, clk.now+planDuration)
	}
	if g.MaxMembers != 3 {
		t.Errorf("max members = %d, want 3", g.MaxMembers)
	}

	t.Run("OnePerAdmin", func(t *testing.T) {
		_, err := e.CreateGroup(ctx, "admin", "family", 3)
		if !errors.Is(err, subledger.ErrGroupExists) {
			t.Errorf("expected ErrGroupExists, got %v", err)
		}
	})

	t.Run("UnknownPlan", func(t *testing.T) {
		_, err := e.CreateGroup(ctx, "other", "missing", 3)
		if !errors.Is(err, subledger.ErrPlanNotFound) {
			t.Errorf("expected ErrPlanNotFound, got %v", err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if _, err := e.CreateGroup(ctx, "admin", "family", 0); err == nil {
			t.Error("zero max members should be rejected")
		}
	})
}

func TestJoinGroup(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "family", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	g, err := e.CreateGroup(ctx, "admin", "family", 2)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.JoinGroup(ctx, "alice", "admin"); err != nil {
		t.Fatal(err)
	}

	// Members get a personal subscription mirroring the group expiry,
	// without paying anything.
	sub, err := e.SubscriptionOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if sub.ExpiresAt != g.ExpiresAt {
		t.Errorf("member expiry %d does not mirror group %d", sub.ExpiresAt, g.ExpiresAt)
	}
	if !sub.LastPayment.IsZero() {
		t.Errorf("member paid %s, want zero", sub.LastPayment)
	}

	if _, err := e.JoinGroup(ctx, "bob", "admin"); err != nil {
		t.Fatal(err)
	}

	t.Run("Full", func(t *testing.T) {
		_, err := e.JoinGroup(ctx, "carol", "admin")
		if !errors.Is(err, subledger.ErrGroupFull) {
			t.Errorf("expected ErrGroupFull, got %v", err)
		}
	})

	t.Run("AlreadySubscribed", func(t *testing.T) {
		_, err := e.JoinGroup(ctx, "alice", "admin")
		if !errors.Is(err, subledger.ErrAlreadySubscribed) {
			t.Errorf("expected ErrAlreadySubscribed, got %v", err)
		}
	})

	t.Run("UnknownGroup", func(t *testing.T) {
		_, err := e.JoinGroup(ctx, "dave", "nobody")
		if !errors.Is(err, subledger.ErrGroupNotFound) {
			t.Errorf("expected ErrGroupNotFound, got %v", err)
		}
	})
}

func TestLeaveGroup(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "family", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateGroup(ctx, "admin", "family", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := e.JoinGroup(ctx, "alice", "admin"); err != nil {
		t.Fatal(err)
	}

	if err := e.LeaveGroup(ctx, "alice", "admin"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.SubscriptionOf(ctx, "alice"); !errors.Is(err, subledger.ErrSubscriptionNotFound) {
		t.Errorf("leaving should delete the member subscription, got %v", err)
	}
	g, err := e.GroupOf(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Members) != 0 {
		t.Errorf("group still has members: %v", g.Members)
	}

	if err := e.LeaveGroup(ctx, "alice", "admin"); !errors.Is(err, subledger.ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "family", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateGroup(ctx, "admin", "family", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := e.JoinGroup(ctx, "alice", "admin"); err != nil {
		t.Fatal(err)
	}

	if err := e.RemoveMember(ctx, "admin", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.SubscriptionOf(ctx, "alice"); !errors.Is(err, subledger.ErrSubscriptionNotFound) {
		t.Errorf("ejected member kept a subscription: %v", err)
	}
}

func TestRenewGroup(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "family", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	g, err := e.CreateGroup(ctx, "admin", "family", 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.JoinGroup(ctx, "alice", "admin"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.JoinGroup(ctx, "bob", "admin"); err != nil {
		t.Fatal(err)
	}

	// Renewal before expiry extends from the current expiry.
	oldExpiry := g.ExpiresAt
	clk.advance(10 * day)

	g, err = e.RenewGroup(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if g.ExpiresAt != oldExpiry+planDuration {
		t.Errorf("group expires at %d, want %d", g.ExpiresAt, oldExpiry+planDuration)
	}

	// The new expiry propagates to every member subscription.
	for _, member := range []string{"alice", "bob"} {
		sub, err := e.SubscriptionOf(ctx, member)
		if err != nil {
			t.Fatal(err)
		}
		if sub.ExpiresAt != g.ExpiresAt {
			t.Errorf("%s expiry %d does not match group %d", member, sub.ExpiresAt, g.ExpiresAt)
		}
	}
}

func TestRenewGroupAfterExpiry(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "family", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateGroup(ctx, "admin", "family", 3); err != nil {
		t.Fatal(err)
	}

	// Lapsed group: the new period starts now.
	clk.advance(45 * day)

	g, err := e.RenewGroup(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if g.ExpiresAt != clk.now+planDuration {
		t.Errorf("group expires at %d, want %d", g.ExpiresAt, clk.now+planDuration)
	}
}
