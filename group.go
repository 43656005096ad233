package subledger

import (
	"context"
	"errors"

	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/group"
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/subscription"
	"github.com/xraph/subledger/types"
)

// CreateGroup opens a shared subscription owned by the admin, good for
// one plan duration. Each admin owns at most one group. Members join
// without paying; collecting per-member payment is left to the host.
func (e *Engine) CreateGroup(ctx context.Context, adminID, planCode string, maxMembers int) (*group.Group, error) {
	if adminID == "" || planCode == "" {
		return nil, ErrInvalidInput
	}
	if maxMembers <= 0 {
		return nil, ValidationError{Field: "max_members", Message: "must be positive"}
	}

	unlock := e.locks.acquire(adminID)
	defer unlock()

	p, err := e.store.GetPlan(ctx, adminID, planCode)
	if err != nil {
		return nil, err
	}

	g := &group.Group{
		Entity:     types.NewEntity(),
		ID:         id.NewGroupID(),
		AdminID:    adminID,
		PlanCode:   planCode,
		ExpiresAt:  e.now() + p.Duration,
		MaxMembers: maxMembers,
	}
	if err := e.store.CreateGroup(ctx, g); err != nil {
		return nil, err
	}

	e.logger.Info("group created",
		"admin", adminID,
		"plan", planCode,
		"max_members", maxMembers,
	)
	return g, nil
}

// JoinGroup adds a user to an admin's group and grants them a personal
// subscription record mirroring the group's expiry.
func (e *Engine) JoinGroup(ctx context.Context, userID, groupAdmin string) (*group.Group, error) {
	if userID == "" || groupAdmin == "" {
		return nil, ErrInvalidInput
	}

	unlock := e.locks.acquire(userID, groupAdmin)
	defer unlock()

	if _, err := e.store.GetSubscription(ctx, userID); err == nil {
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	g, err := e.store.GetGroup(ctx, groupAdmin)
	if err != nil {
		return nil, err
	}
	if g.IsFull() {
		return nil, ErrGroupFull
	}

	g.Members = append(g.Members, userID)
	g.Touch()
	if err := e.store.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}

	now := e.now()
	token := types.TokenAPT
	if p, err := e.store.GetPlan(ctx, groupAdmin, g.PlanCode); err == nil {
		token = p.Price.Token
	}

	sub := &subscription.Subscription{
		Entity:      types.NewEntity(),
		ID:          id.NewSubscriptionID(),
		UserID:      userID,
		PlanAdmin:   groupAdmin,
		PlanCode:    g.PlanCode,
		StartedAt:   now,
		ExpiresAt:   g.ExpiresAt,
		LastPayment: types.Zero(token),
	}
	if err := e.store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	e.logger.Info("joined group",
		"user", userID,
		"admin", groupAdmin,
		"members", len(g.Members),
	)

	e.plugins.EmitSubscribed(ctx, &event.Subscribed{
		User:      userID,
		PlanAdmin: groupAdmin,
		PlanID:    g.PlanCode,
		ExpiresAt: g.ExpiresAt,
	})
	return g, nil
}

// LeaveGroup removes the user from the group and deletes their
// personal subscription record.
func (e *Engine) LeaveGroup(ctx context.Context, userID, groupAdmin string) error {
	return e.removeFromGroup(ctx, userID, groupAdmin)
}

// RemoveMember lets the group admin eject a member, deleting the
// member's personal subscription record.
func (e *Engine) RemoveMember(ctx context.Context, adminID, userID string) error {
	return e.removeFromGroup(ctx, userID, adminID)
}

func (e *Engine) removeFromGroup(ctx context.Context, userID, groupAdmin string) error {
	unlock := e.locks.acquire(userID, groupAdmin)
	defer unlock()

	g, err := e.store.GetGroup(ctx, groupAdmin)
	if err != nil {
		return err
	}
	if !g.RemoveMember(userID) {
		return ErrNotMember
	}
	g.Touch()
	if err := e.store.UpdateGroup(ctx, g); err != nil {
		return err
	}

	if err := e.store.DeleteSubscription(ctx, userID); err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return err
	}

	e.logger.Info("left group", "user", userID, "admin", groupAdmin)

	e.plugins.EmitCanceled(ctx, &event.Canceled{User: userID})
	return nil
}

// RenewGroup extends the group's expiry by one plan duration from
// max(expiry, now) and propagates the new expiry to every current
// member's personal subscription record.
func (e *Engine) RenewGroup(ctx context.Context, adminID string) (*group.Group, error) {
	g, err := e.store.GetGroup(ctx, adminID)
	if err != nil {
		return nil, err
	}

	keys := append([]string{adminID}, g.Members...)
	unlock := e.locks.acquire(keys...)
	defer unlock()

	g, err = e.store.GetGroup(ctx, adminID)
	if err != nil {
		return nil, err
	}

	p, err := e.store.GetPlan(ctx, adminID, g.PlanCode)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, ErrPlanMismatch
		}
		return nil, err
	}

	now := e.now()
	base := g.ExpiresAt
	if now > base {
		base = now
	}
	g.ExpiresAt = base + p.Duration
	g.Touch()

	if err := e.store.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}

	for _, member := range g.Members {
		sub, err := e.store.GetSubscription(ctx, member)
		if err != nil {
			e.logger.Warn("group renewal skipped member", "user", member, "error", err)
			continue
		}
		sub.ExpiresAt = g.ExpiresAt
		sub.Touch()
		if err := e.store.UpdateSubscription(ctx, sub); err != nil {
			e.logger.Error("group renewal member update failed", "user", member, "error", err)
		}
	}

	e.logger.Info("group renewed",
		"admin", adminID,
		"expires_at", g.ExpiresAt,
		"members", len(g.Members),
	)
	return g, nil
}

// GroupOf returns the admin's group subscription.
func (e *Engine) GroupOf(ctx context.Context, adminID string) (*group.Group, error) {
	return e.store.GetGroup(ctx, adminID)
}
