package referral

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// RewardPercent is the referrer's cut of a referee's first payment,
// applied to the final (post-discount) price.
const RewardPercent = 10

// Stats is a user's referral ledger entry. It records both directions:
// who referred this user, and who this user has referred. Rewards are
// paid from the plan admin's balance at the referee's first enrollment;
// TotalRewardsEarned only advances when that transfer succeeds.
type Stats struct {
	types.Entity
	ID                 id.ReferralID `json:"id"`
	UserID             string        `json:"user_id"`
	Referrer           string        `json:"referrer"`
	ReferredUsers      []string      `json:"referred_users"`
	TotalRewardsEarned int64         `json:"total_rewards_earned"`
	ActiveReferrals    int64         `json:"active_referrals"`
}

// HasReferred reports whether the user already referred the given referee.
func (s *Stats) HasReferred(referee string) bool {
	for _, u := range s.ReferredUsers {
		if u == referee {
			return true
		}
	}
	return false
}
