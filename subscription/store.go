package subscription

import "context"

// Store persists subscriptions keyed by user identity.
type Store interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, userID string) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
	Delete(ctx context.Context, userID string) error
}
