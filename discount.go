package subledger

import (
	"context"
	"errors"

	"github.com/xraph/subledger/discount"
	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// CreateDiscountCode publishes a redeemable discount code under the
// admin's catalog. maxUses of zero means unlimited redemptions.
func (e *Engine) CreateDiscountCode(ctx context.Context, adminID, code string, percent int, expiresAt, maxUses int64) (*discount.Code, error) {
	if adminID == "" || code == "" {
		return nil, ErrInvalidInput
	}
	if percent <= 0 || percent > 100 {
		return nil, ErrInvalidPercent
	}
	if maxUses < 0 {
		return nil, ValidationError{Field: "max_uses", Message: "must not be negative"}
	}

	unlock := e.locks.acquire(adminID)
	defer unlock()

	c := &discount.Code{
		Entity:    types.NewEntity(),
		ID:        id.NewCodeID(),
		AdminID:   adminID,
		Code:      code,
		Percent:   percent,
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
	}

	if err := e.store.CreateDiscountCode(ctx, c); err != nil {
		return nil, err
	}

	e.logger.Info("discount code created",
		"admin", adminID,
		"code", code,
		"percent", percent,
	)
	return c, nil
}

// GetDiscountCode retrieves a discount code from an admin's catalog.
func (e *Engine) GetDiscountCode(ctx context.Context, adminID, code string) (*discount.Code, error) {
	return e.store.GetDiscountCode(ctx, adminID, code)
}

// discountResolution is the outcome of resolving the best discount for
// one enrollment. It is computed from reads only; the caller applies
// the associated mutations (code usage, history) after the payment
// check clears.
type discountResolution struct {
	month    int
	seasonal int
	loyalty  int

	// code is non-nil when a supplied code was valid at resolution
	// time: it exists, is unexpired, and is under its usage cap.
	code *discount.Code

	// history is the user's existing discount history, nil on first
	// enrollment. loyaltyCount snapshots its SubscriptionCount at
	// resolution time; the record itself is mutated before events fire.
	history      *discount.History
	loyaltyCount int64

	// percent is the winning discount: max(seasonal, code, loyalty).
	percent int
}

// resolveDiscount computes the discount candidates for an enrollment
// at the given time. A supplied code that does not exist, is expired,
// or is exhausted is simply not a candidate; it never fails the
// enrollment.
func (e *Engine) resolveDiscount(ctx context.Context, now int64, adminID, userID, codeStr string) (*discountResolution, error) {
	res := &discountResolution{
		month:    discount.MonthOf(now),
		seasonal: discount.SeasonalPercentAt(now),
	}

	if codeStr != "" {
		c, err := e.store.GetDiscountCode(ctx, adminID, codeStr)
		switch {
		case err == nil:
			if c.Redeemable(now) {
				res.code = c
			}
		case errors.Is(err, ErrDiscountCodeNotFound):
			// not a candidate
		default:
			return nil, err
		}
	}

	h, err := e.store.GetHistory(ctx, userID)
	switch {
	case err == nil:
		res.history = h
		res.loyaltyCount = h.SubscriptionCount
		if h.SubscriptionCount > 0 {
			res.loyalty = discount.LoyaltyPercent
		}
	case errors.Is(err, ErrNotFound):
		// first enrollment
	default:
		return nil, err
	}

	res.percent = res.seasonal
	if res.code != nil && res.code.Percent > res.percent {
		res.percent = res.code.Percent
	}
	if res.loyalty > res.percent {
		res.percent = res.loyalty
	}
	return res, nil
}

// emitDiscountEvent fires at most one of the three discount events.
// The conditions are mutually exclusive: a redeemed code suppresses
// the seasonal and loyalty events even when it did not win, and a
// redeemed code that lost fires nothing.
func (e *Engine) emitDiscountEvent(ctx context.Context, res *discountResolution, userID, planCode string, original, discounted types.Amount) {
	codeUsed := res.code != nil

	switch {
	case codeUsed && res.code.Percent == res.percent && res.percent > 0:
		e.plugins.EmitDiscountCodeUsed(ctx, &event.DiscountCodeUsed{
			User:    userID,
			Code:    res.code.Code,
			Percent: res.code.Percent,
			Savings: original.Subtract(discounted),
		})
	case !codeUsed && res.seasonal == res.percent && res.seasonal > 0:
		e.plugins.EmitDiscountApplied(ctx, &event.DiscountApplied{
			User:            userID,
			PlanID:          planCode,
			OriginalPrice:   original,
			DiscountedPrice: discounted,
			Month:           res.month,
		})
	case !codeUsed && res.seasonal == 0 && res.loyalty == res.percent && res.loyalty > 0:
		e.plugins.EmitLoyaltyRewardApplied(ctx, &event.LoyaltyRewardApplied{
			User:              userID,
			PlanID:            planCode,
			SubscriptionCount: res.loyaltyCount,
			Percent:           res.loyalty,
			Savings:           original.Subtract(discounted),
		})
	}
}
