package discount

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// Discount percentages. The resolver picks the single best (maximum)
// candidate among seasonal, code, and loyalty sources.
const (
	SeasonalPercent = 30
	LoyaltyPercent  = 15
)

// Code is an admin-issued discount code. UsageCount increments once per
// successful redemption, even when the code's percent does not end up
// winning the discount resolution. Codes are never deleted.
type Code struct {
	types.Entity
	ID         id.CodeID `json:"id"`
	AdminID    string    `json:"admin_id"`
	Code       string    `json:"code"`
	Percent    int       `json:"percent"`
	ExpiresAt  int64     `json:"expires_at"` // unix seconds
	UsageCount int64     `json:"usage_count"`
	MaxUses    int64     `json:"max_uses"` // 0 = unlimited
}

// Redeemable reports whether the code can still be redeemed at the given time.
func (c *Code) Redeemable(now int64) bool {
	if c.ExpiresAt <= now {
		return false
	}
	return c.MaxUses == 0 || c.UsageCount < c.MaxUses
}

// History tracks a user's discount-relevant enrollment history.
// SubscriptionCount increments on every successful enrollment, including
// the first; the loyalty discount applies whenever the count is positive
// at enrollment time, i.e. from the second enrollment onward.
type History struct {
	types.Entity
	ID                id.HistoryID `json:"id"`
	UserID            string       `json:"user_id"`
	UsedCodes         []string     `json:"used_codes"`
	SubscriptionCount int64        `json:"subscription_count"`
}
