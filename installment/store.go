package installment

import "context"

// Store persists installment plans keyed by (payer, sequence number).
// Create assigns the next sequence number for the payer.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, payerID string, seq int64) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	List(ctx context.Context, payerID string) ([]*Plan, error)
}
