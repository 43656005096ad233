package payment

import "context"

// Store persists receipts, escrows, and price feeds. Receipts and
// escrows are sequenced per payer; Append and CreateEscrow assign the
// next sequence number.
type Store interface {
	AppendReceipt(ctx context.Context, r *Receipt) error
	ListReceipts(ctx context.Context, payerID string) ([]*Receipt, error)

	CreateEscrow(ctx context.Context, e *Escrow) error
	GetEscrow(ctx context.Context, payerID string, seq int64) (*Escrow, error)
	UpdateEscrow(ctx context.Context, e *Escrow) error
	ListEscrows(ctx context.Context, payerID string) ([]*Escrow, error)

	GetPriceFeed(ctx context.Context, adminID string) (*PriceFeed, error)
	PutPriceFeed(ctx context.Context, f *PriceFeed) error
}
