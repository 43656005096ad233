package discount

import "context"

// Store persists discount codes and per-user discount histories.
type Store interface {
	CreateCode(ctx context.Context, c *Code) error
	GetCode(ctx context.Context, adminID, code string) (*Code, error)
	UpdateCode(ctx context.Context, c *Code) error

	GetHistory(ctx context.Context, userID string) (*History, error)
	PutHistory(ctx context.Context, h *History) error
}
