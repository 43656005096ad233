package subledger

import (
	"context"

	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/plan"
	"github.com/xraph/subledger/types"
)

// CreatePlan publishes a new plan under the admin's catalog. Plans are
// keyed by (admin, code) and immutable once created.
func (e *Engine) CreatePlan(ctx context.Context, adminID, code string, duration int64, price types.Amount) (*plan.Plan, error) {
	if adminID == "" || code == "" {
		return nil, ErrInvalidInput
	}
	if duration <= 0 {
		return nil, ValidationError{Field: "duration", Message: "must be positive"}
	}
	if price.Units < 0 {
		return nil, ErrInvalidAmount
	}

	unlock := e.locks.acquire(adminID)
	defer unlock()

	p := &plan.Plan{
		Entity:   types.NewEntity(),
		ID:       id.NewPlanID(),
		AdminID:  adminID,
		Code:     code,
		Duration: duration,
		Price:    price,
	}

	if err := e.store.CreatePlan(ctx, p); err != nil {
		return nil, err
	}

	e.logger.Info("plan created",
		"admin", adminID,
		"plan", code,
		"duration", duration,
		"price", price.String(),
	)

	e.plugins.EmitPlanCreated(ctx, &event.PlanCreated{
		PlanID:   code,
		Duration: duration,
		Price:    price,
	})
	return p, nil
}

// GetPlan retrieves a plan from an admin's catalog.
func (e *Engine) GetPlan(ctx context.Context, adminID, code string) (*plan.Plan, error) {
	return e.store.GetPlan(ctx, adminID, code)
}

// ListPlans returns every plan in an admin's catalog.
func (e *Engine) ListPlans(ctx context.Context, adminID string) ([]*plan.Plan, error) {
	return e.store.ListPlans(ctx, adminID)
}

// GetPlanDuration looks up a plan's duration in seconds. The boolean
// reports whether the plan exists.
func (e *Engine) GetPlanDuration(ctx context.Context, adminID, code string) (int64, bool) {
	p, err := e.store.GetPlan(ctx, adminID, code)
	if err != nil {
		return 0, false
	}
	return p.Duration, true
}

// GetPlanPrice looks up a plan's price. The boolean reports whether
// the plan exists.
func (e *Engine) GetPlanPrice(ctx context.Context, adminID, code string) (types.Amount, bool) {
	p, err := e.store.GetPlan(ctx, adminID, code)
	if err != nil {
		return types.Amount{}, false
	}
	return p.Price, true
}
