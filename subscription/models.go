package subscription

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// Subscription is a user's single active enrollment. Each user holds at
// most one subscription at a time; enrolling again while one exists is
// rejected upstream.
type Subscription struct {
	types.Entity
	ID            id.SubscriptionID `json:"id"`
	UserID        string            `json:"user_id"`
	PlanAdmin     string            `json:"plan_admin"`
	PlanCode      string            `json:"plan_code"`
	StartedAt     int64             `json:"started_at"`  // unix seconds
	ExpiresAt     int64             `json:"expires_at"`  // unix seconds
	InGracePeriod bool              `json:"in_grace_period"`
	GraceEndsAt   int64             `json:"grace_ends_at"`
	LastPayment   types.Amount      `json:"last_payment"`
	AutoRenew     bool              `json:"auto_renew"`
}

// Active reports whether the subscription grants access at the given
// time, strictly by expiry. Grace status does not extend this; callers
// that want to honor grace must check InGracePeriod separately.
func (s *Subscription) Active(now int64) bool {
	return now < s.ExpiresAt
}

// InGrace reports whether the grace window is open at the given time.
func (s *Subscription) InGrace(now int64) bool {
	return s.InGracePeriod && now < s.GraceEndsAt
}

// Remaining returns the seconds of paid access left, zero if expired.
// Grace time does not count as remaining paid access.
func (s *Subscription) Remaining(now int64) int64 {
	if now >= s.ExpiresAt {
		return 0
	}
	return s.ExpiresAt - now
}
