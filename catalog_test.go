package subledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/types"
)

func TestCreatePlan(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	p, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID.IsNil() {
		t.Error("expected a plan ID to be assigned")
	}
	if p.AdminID != "admin" || p.Code != "basic" {
		t.Errorf("unexpected plan identity: %s/%s", p.AdminID, p.Code)
	}

	t.Run("Duplicate", func(t *testing.T) {
		_, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(200))
		if !errors.Is(err, subledger.ErrPlanExists) {
			t.Errorf("expected ErrPlanExists, got %v", err)
		}
	})

	t.Run("SameCodeOtherAdmin", func(t *testing.T) {
		if _, err := e.CreatePlan(ctx, "admin2", "basic", planDuration, types.APT(50)); err != nil {
			t.Errorf("plans are scoped per admin: %v", err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if _, err := e.CreatePlan(ctx, "", "basic", planDuration, types.APT(100)); !errors.Is(err, subledger.ErrInvalidInput) {
			t.Errorf("empty admin: got %v", err)
		}
		if _, err := e.CreatePlan(ctx, "admin", "", planDuration, types.APT(100)); !errors.Is(err, subledger.ErrInvalidInput) {
			t.Errorf("empty code: got %v", err)
		}
		if _, err := e.CreatePlan(ctx, "admin", "zero", 0, types.APT(100)); err == nil {
			t.Error("zero duration should be rejected")
		}
		if _, err := e.CreatePlan(ctx, "admin", "neg", planDuration, types.APT(-1)); !errors.Is(err, subledger.ErrInvalidAmount) {
			t.Errorf("negative price: got %v", err)
		}
	})
}

func TestGetPlan(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}

	p, err := e.GetPlan(ctx, "admin", "basic")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Price.Equal(types.APT(100)) {
		t.Errorf("price = %s, want 100 octas", p.Price)
	}

	if _, err := e.GetPlan(ctx, "admin", "missing"); !errors.Is(err, subledger.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestListPlans(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	for _, code := range []string{"basic", "pro", "enterprise"} {
		if _, err := e.CreatePlan(ctx, "admin", code, planDuration, types.APT(100)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := e.CreatePlan(ctx, "other", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}

	plans, err := e.ListPlans(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 3 {
		t.Errorf("got %d plans, want 3", len(plans))
	}
}

func TestPlanLookupHelpers(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreatePlan(ctx, "admin", "basic", planDuration, types.APT(100)); err != nil {
		t.Fatal(err)
	}

	if d, ok := e.GetPlanDuration(ctx, "admin", "basic"); !ok || d != planDuration {
		t.Errorf("GetPlanDuration = (%d, %v)", d, ok)
	}
	if _, ok := e.GetPlanDuration(ctx, "admin", "missing"); ok {
		t.Error("missing plan reported as existing")
	}

	if p, ok := e.GetPlanPrice(ctx, "admin", "basic"); !ok || !p.Equal(types.APT(100)) {
		t.Errorf("GetPlanPrice = (%s, %v)", p, ok)
	}
	if _, ok := e.GetPlanPrice(ctx, "admin", "missing"); ok {
		t.Error("missing plan reported as existing")
	}
}
