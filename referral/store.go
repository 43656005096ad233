package referral

import "context"

// Store persists referral stats keyed by user identity.
type Store interface {
	Get(ctx context.Context, userID string) (*Stats, error)
	Put(ctx context.Context, s *Stats) error
}
