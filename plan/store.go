package plan

import "context"

// Store is the catalog storage interface.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, adminID, code string) (*Plan, error)
	List(ctx context.Context, adminID string) ([]*Plan, error)
}
