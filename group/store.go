package group

import "context"

// Store persists group subscriptions keyed by admin identity. Each
// admin owns at most one group.
type Store interface {
	Create(ctx context.Context, g *Group) error
	Get(ctx context.Context, adminID string) (*Group, error)
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, adminID string) error
}
