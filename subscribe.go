package subledger

import (
	"context"
	"errors"

	"github.com/xraph/subledger/discount"
	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/referral"
	"github.com/xraph/subledger/subscription"
	"github.com/xraph/subledger/types"
)

// Enroll subscribes a user to a plan, charging the discounted price up
// front. code and referrer are optional; pass empty strings to omit
// them. A code that is unknown, expired, or exhausted is ignored
// rather than failing the enrollment; a referrer equal to the user is
// ignored. Referral payout failure never fails the enrollment.
func (e *Engine) Enroll(ctx context.Context, userID, planAdmin, planCode, code, referrer string) (*subscription.Subscription, error) {
	if userID == "" || planAdmin == "" || planCode == "" {
		return nil, ErrInvalidInput
	}

	unlock := e.locks.acquire(userID, planAdmin, referrer)
	defer unlock()

	now := e.now()

	if _, err := e.store.GetSubscription(ctx, userID); err == nil {
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	p, err := e.store.GetPlan(ctx, planAdmin, planCode)
	if err != nil {
		return nil, err
	}

	res, err := e.resolveDiscount(ctx, now, planAdmin, userID, code)
	if err != nil {
		return nil, err
	}
	finalPrice := p.Price.PercentOff(res.percent)

	// Validate funds before touching any record, so a failed payment
	// leaves no trace beyond the PaymentFailed event.
	if finalPrice.IsPositive() {
		if err := e.chargeForPlan(ctx, userID, planAdmin, planCode, finalPrice); err != nil {
			return nil, err
		}
	}

	if res.code != nil {
		res.code.UsageCount++
		res.code.Touch()
		if err := e.store.UpdateDiscountCode(ctx, res.code); err != nil {
			e.logger.Error("discount code update failed", "code", res.code.Code, "error", err)
		}
	}

	h := res.history
	if h == nil {
		h = &discount.History{
			Entity: types.NewEntity(),
			ID:     id.NewHistoryID(),
			UserID: userID,
		}
	}
	if res.code != nil {
		h.UsedCodes = append(h.UsedCodes, res.code.Code)
	}
	h.SubscriptionCount++
	h.Touch()
	if err := e.store.PutHistory(ctx, h); err != nil {
		return nil, err
	}

	sub := &subscription.Subscription{
		Entity:      types.NewEntity(),
		ID:          id.NewSubscriptionID(),
		UserID:      userID,
		PlanAdmin:   planAdmin,
		PlanCode:    planCode,
		StartedAt:   now,
		ExpiresAt:   now + p.Duration,
		LastPayment: finalPrice,
	}
	if err := e.store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	e.logger.Info("enrolled",
		"user", userID,
		"admin", planAdmin,
		"plan", planCode,
		"price", finalPrice.String(),
		"discount_percent", res.percent,
	)

	e.emitDiscountEvent(ctx, res, userID, planCode, p.Price, finalPrice)
	e.plugins.EmitSubscribed(ctx, &event.Subscribed{
		User:      userID,
		PlanAdmin: planAdmin,
		PlanID:    planCode,
		ExpiresAt: sub.ExpiresAt,
	})
	if finalPrice.IsPositive() {
		e.plugins.EmitPaymentReceived(ctx, &event.PaymentReceived{
			From:   userID,
			PlanID: planCode,
			Amount: finalPrice,
		})
	}

	if referrer != "" && referrer != userID {
		e.recordReferral(ctx, userID, referrer, planAdmin, planCode, finalPrice)
	}

	return sub, nil
}

// Renew extends an existing subscription by one plan duration at the
// full plan price, clearing any grace period. Renewal never applies
// discounts.
func (e *Engine) Renew(ctx context.Context, userID string) (*subscription.Subscription, error) {
	peek, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.acquire(userID, peek.PlanAdmin)
	defer unlock()

	sub, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := e.store.GetPlan(ctx, sub.PlanAdmin, sub.PlanCode)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, ErrPlanMismatch
		}
		return nil, err
	}

	now := e.now()

	if p.Price.IsPositive() {
		if err := e.chargeForPlan(ctx, userID, sub.PlanAdmin, sub.PlanCode, p.Price); err != nil {
			return nil, err
		}
	}

	base := sub.ExpiresAt
	if now > base {
		base = now
	}
	sub.ExpiresAt = base + p.Duration
	sub.InGracePeriod = false
	sub.GraceEndsAt = 0
	sub.LastPayment = p.Price
	sub.StartedAt = now
	sub.Touch()

	if err := e.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	e.logger.Info("renewed", "user", userID, "plan", sub.PlanCode, "expires_at", sub.ExpiresAt)

	e.plugins.EmitSubscribed(ctx, &event.Subscribed{
		User:      userID,
		PlanAdmin: sub.PlanAdmin,
		PlanID:    sub.PlanCode,
		ExpiresAt: sub.ExpiresAt,
	})
	if p.Price.IsPositive() {
		e.plugins.EmitPaymentReceived(ctx, &event.PaymentReceived{
			From:   userID,
			PlanID: sub.PlanCode,
			Amount: p.Price,
		})
	}

	return sub, nil
}

// Cancel soft-cancels a subscription: the record survives with an open
// grace window during which Renew restores it. Whether grace time
// still grants access is the caller's policy; IsActive ignores it.
func (e *Engine) Cancel(ctx context.Context, userID string) error {
	unlock := e.locks.acquire(userID)
	defer unlock()

	sub, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return ErrNotSubscribed
		}
		return err
	}

	now := e.now()
	sub.InGracePeriod = true
	sub.GraceEndsAt = now + e.gracePeriod
	sub.Touch()

	if err := e.store.UpdateSubscription(ctx, sub); err != nil {
		return err
	}

	e.logger.Info("grace period started", "user", userID, "grace_ends_at", sub.GraceEndsAt)

	e.plugins.EmitGracePeriodStarted(ctx, &event.GracePeriodStarted{
		User:        userID,
		ExpiredAt:   sub.ExpiresAt,
		GraceEndsAt: sub.GraceEndsAt,
	})
	return nil
}

// HardCancel deletes a subscription immediately, with no grace window
// and no refund. If the user was referred, the referrer's active
// referral count drops by one.
func (e *Engine) HardCancel(ctx context.Context, userID string) error {
	unlock := e.locks.acquire(userID, e.referrerOf(ctx, userID))
	defer unlock()

	if _, err := e.store.GetSubscription(ctx, userID); err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return ErrNotSubscribed
		}
		return err
	}

	e.dropActiveReferral(ctx, userID)

	if err := e.store.DeleteSubscription(ctx, userID); err != nil {
		return err
	}

	e.logger.Info("canceled", "user", userID)

	e.plugins.EmitCanceled(ctx, &event.Canceled{User: userID})
	return nil
}

// CancelWithRefund lets the plan admin cancel a user's subscription
// and refund the unused whole days, pro-rated against the plan
// duration and the user's last payment. The refund is zero when the
// subscription already expired or the plan has left the catalog.
func (e *Engine) CancelWithRefund(ctx context.Context, adminID, userID string) error {
	unlock := e.locks.acquire(adminID, userID, e.referrerOf(ctx, userID))
	defer unlock()

	sub, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return ErrNotSubscribed
		}
		return err
	}
	if sub.PlanAdmin != adminID {
		return ErrNotAdmin
	}

	now := e.now()

	var daysUnused int64
	if sub.ExpiresAt > now {
		daysUnused = (sub.ExpiresAt - now) / discount.SecondsPerDay
	}

	refund := types.Zero(sub.LastPayment.Token)
	if p, err := e.store.GetPlan(ctx, adminID, sub.PlanCode); err == nil {
		if planDays := p.DurationDays(); planDays > 0 {
			refund = sub.LastPayment.Prorate(daysUnused, planDays)
		}
	}

	issued := false
	if refund.IsPositive() && e.bank.IsRegistered(ctx, userID, refund.Token) {
		if err := e.transfer(ctx, adminID, userID, refund); err != nil {
			return err
		}
		issued = true
	}

	e.dropActiveReferral(ctx, userID)

	if err := e.store.DeleteSubscription(ctx, userID); err != nil {
		return err
	}

	e.logger.Info("canceled with refund",
		"admin", adminID,
		"user", userID,
		"refund", refund.String(),
		"days_unused", daysUnused,
	)

	if issued {
		e.plugins.EmitRefundIssued(ctx, &event.RefundIssued{
			User:         userID,
			PlanID:       sub.PlanCode,
			RefundAmount: refund,
			DaysUnused:   daysUnused,
		})
	}
	e.plugins.EmitCanceled(ctx, &event.Canceled{User: userID})
	return nil
}

// ChangePlan switches a subscription to another plan under the same
// admin without moving the expiry. The unused remainder of the old
// payment is credited against the pro-rated charge for the new plan:
// the user pays any shortfall, and the admin returns any excess only
// when the admin's balance covers it. The admin-side refund being
// skipped is deliberate; the user-side charge failing is fatal.
func (e *Engine) ChangePlan(ctx context.Context, userID, newPlanCode string) (*subscription.Subscription, error) {
	peek, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, err
	}

	unlock := e.locks.acquire(userID, peek.PlanAdmin)
	defer unlock()

	sub, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, err
	}

	oldPlan, err := e.store.GetPlan(ctx, sub.PlanAdmin, sub.PlanCode)
	if err != nil {
		return nil, err
	}
	newPlan, err := e.store.GetPlan(ctx, sub.PlanAdmin, newPlanCode)
	if err != nil {
		return nil, err
	}
	if newPlan.Price.Token != sub.LastPayment.Token {
		return nil, ValidationError{Field: "plan", Message: "token type differs from current plan"}
	}

	now := e.now()
	var remaining int64
	if sub.ExpiresAt > now {
		remaining = sub.ExpiresAt - now
	}

	refund := sub.LastPayment.Prorate(remaining, oldPlan.Duration)
	newCharge := newPlan.Price.Prorate(remaining, newPlan.Duration)

	switch {
	case newCharge.GreaterThan(refund):
		due := newCharge.Subtract(refund)
		if err := e.transfer(ctx, userID, sub.PlanAdmin, due); err != nil {
			return nil, err
		}
	case refund.GreaterThan(newCharge):
		back := refund.Subtract(newCharge)
		if err := e.refundIfCovered(ctx, sub.PlanAdmin, userID, back); err != nil {
			e.logger.Warn("plan change refund skipped",
				"user", userID,
				"admin", sub.PlanAdmin,
				"amount", back.String(),
				"error", err,
			)
		}
	}

	sub.PlanCode = newPlanCode
	sub.LastPayment = newCharge
	sub.Touch()

	if err := e.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	e.logger.Info("plan changed",
		"user", userID,
		"from", oldPlan.Code,
		"to", newPlanCode,
		"charge", newCharge.String(),
	)
	return sub, nil
}

// IsActive reports whether the user holds a subscription whose expiry
// is in the future. Grace periods do not count; check the record's
// InGracePeriod for that.
func (e *Engine) IsActive(ctx context.Context, userID string) (bool, error) {
	sub, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return false, nil
		}
		return false, err
	}
	return sub.Active(e.now()), nil
}

// TimeRemaining returns the seconds of paid access left, zero for
// expired or absent subscriptions.
func (e *Engine) TimeRemaining(ctx context.Context, userID string) (int64, error) {
	sub, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return sub.Remaining(e.now()), nil
}

// SubscriptionOf returns the user's subscription record.
func (e *Engine) SubscriptionOf(ctx context.Context, userID string) (*subscription.Subscription, error) {
	return e.store.GetSubscription(ctx, userID)
}

// ReferralStatsOf returns the user's referral ledger entry.
func (e *Engine) ReferralStatsOf(ctx context.Context, userID string) (*referral.Stats, error) {
	return e.store.GetReferralStats(ctx, userID)
}

// recordReferral links referee to referrer and pays the referral
// reward out of the plan admin's balance. The relationship and active
// referral count are recorded regardless of payout outcome; earned
// totals only advance when the transfer succeeds. Payout failure is
// logged and swallowed.
func (e *Engine) recordReferral(ctx context.Context, referee, referrer, planAdmin, planCode string, finalPrice types.Amount) {
	refereeStats := e.loadOrInitStats(ctx, referee)
	refereeStats.Referrer = referrer
	refereeStats.Touch()

	referrerStats := e.loadOrInitStats(ctx, referrer)
	if !referrerStats.HasReferred(referee) {
		referrerStats.ReferredUsers = append(referrerStats.ReferredUsers, referee)
	}
	referrerStats.ActiveReferrals++

	reward := finalPrice.Percent(e.referralRewardPercent)
	paid := false
	if reward.IsPositive() {
		switch {
		case !e.bank.IsRegistered(ctx, referrer, reward.Token):
			e.logger.Warn("referral reward skipped", "referrer", referrer, "reason", "referrer not registered for token")
		default:
			adminBal, err := e.bank.Balance(ctx, planAdmin, reward.Token)
			if err != nil || adminBal.LessThan(reward) {
				e.logger.Warn("referral reward skipped", "referrer", referrer, "reason", "admin balance does not cover reward")
			} else if err := e.bank.Transfer(ctx, planAdmin, referrer, reward); err != nil {
				e.logger.Warn("referral reward skipped", "referrer", referrer, "error", err)
			} else {
				referrerStats.TotalRewardsEarned += reward.Units
				paid = true
			}
		}
	}
	referrerStats.Touch()

	if err := e.store.PutReferralStats(ctx, refereeStats); err != nil {
		e.logger.Error("referral stats update failed", "user", referee, "error", err)
	}
	if err := e.store.PutReferralStats(ctx, referrerStats); err != nil {
		e.logger.Error("referral stats update failed", "user", referrer, "error", err)
	}

	if paid {
		e.plugins.EmitReferralRewardPaid(ctx, &event.ReferralRewardPaid{
			Referrer: referrer,
			Referee:  referee,
			PlanID:   planCode,
			Reward:   reward,
		})
	}
}

// loadOrInitStats returns the user's referral stats, initializing an
// empty record on first touch.
func (e *Engine) loadOrInitStats(ctx context.Context, userID string) *referral.Stats {
	if s, err := e.store.GetReferralStats(ctx, userID); err == nil {
		return s
	}
	return &referral.Stats{
		Entity: types.NewEntity(),
		ID:     id.NewReferralID(),
		UserID: userID,
	}
}

// referrerOf returns who referred the user, empty when nobody did.
// Used only to pick lock keys before the operation re-reads state
// under the locks.
func (e *Engine) referrerOf(ctx context.Context, userID string) string {
	s, err := e.store.GetReferralStats(ctx, userID)
	if err != nil {
		return ""
	}
	return s.Referrer
}

// dropActiveReferral decrements the referrer's active referral count,
// flooring at zero, when the canceled user was referred.
func (e *Engine) dropActiveReferral(ctx context.Context, userID string) {
	stats, err := e.store.GetReferralStats(ctx, userID)
	if err != nil || stats.Referrer == "" {
		return
	}
	referrerStats, err := e.store.GetReferralStats(ctx, stats.Referrer)
	if err != nil {
		return
	}
	if referrerStats.ActiveReferrals > 0 {
		referrerStats.ActiveReferrals--
		referrerStats.Touch()
		if err := e.store.PutReferralStats(ctx, referrerStats); err != nil {
			e.logger.Error("referral stats update failed", "user", stats.Referrer, "error", err)
		}
	}
}
