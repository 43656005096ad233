package store

import (
	"context"

	"github.com/xraph/subledger/discount"
	"github.com/xraph/subledger/group"
	"github.com/xraph/subledger/installment"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/plan"
	"github.com/xraph/subledger/referral"
	"github.com/xraph/subledger/subscription"
)

// Store is the unified storage interface for all billing entities.
// Instead of embedding the per-domain sub-interfaces, we explicitly
// declare all methods to avoid naming conflicts.
type Store interface {
	// Plan methods
	CreatePlan(ctx context.Context, p *plan.Plan) error
	GetPlan(ctx context.Context, adminID, code string) (*plan.Plan, error)
	ListPlans(ctx context.Context, adminID string) ([]*plan.Plan, error)

	// Discount code methods
	CreateDiscountCode(ctx context.Context, c *discount.Code) error
	GetDiscountCode(ctx context.Context, adminID, code string) (*discount.Code, error)
	UpdateDiscountCode(ctx context.Context, c *discount.Code) error

	// Discount history methods
	GetHistory(ctx context.Context, userID string) (*discount.History, error)
	PutHistory(ctx context.Context, h *discount.History) error

	// Subscription methods
	CreateSubscription(ctx context.Context, s *subscription.Subscription) error
	GetSubscription(ctx context.Context, userID string) (*subscription.Subscription, error)
	UpdateSubscription(ctx context.Context, s *subscription.Subscription) error
	DeleteSubscription(ctx context.Context, userID string) error

	// Referral methods
	GetReferralStats(ctx context.Context, userID string) (*referral.Stats, error)
	PutReferralStats(ctx context.Context, s *referral.Stats) error

	// Group subscription methods
	CreateGroup(ctx context.Context, g *group.Group) error
	GetGroup(ctx context.Context, adminID string) (*group.Group, error)
	UpdateGroup(ctx context.Context, g *group.Group) error
	DeleteGroup(ctx context.Context, adminID string) error

	// Installment plan methods
	CreateInstallmentPlan(ctx context.Context, p *installment.Plan) error
	GetInstallmentPlan(ctx context.Context, payerID string, seq int64) (*installment.Plan, error)
	UpdateInstallmentPlan(ctx context.Context, p *installment.Plan) error
	ListInstallmentPlans(ctx context.Context, payerID string) ([]*installment.Plan, error)

	// Receipt methods
	AppendReceipt(ctx context.Context, r *payment.Receipt) error
	ListReceipts(ctx context.Context, payerID string) ([]*payment.Receipt, error)

	// Escrow methods
	CreateEscrow(ctx context.Context, e *payment.Escrow) error
	GetEscrow(ctx context.Context, payerID string, seq int64) (*payment.Escrow, error)
	UpdateEscrow(ctx context.Context, e *payment.Escrow) error
	ListEscrows(ctx context.Context, payerID string) ([]*payment.Escrow, error)

	// Price feed methods
	GetPriceFeed(ctx context.Context, adminID string) (*payment.PriceFeed, error)
	PutPriceFeed(ctx context.Context, f *payment.PriceFeed) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
