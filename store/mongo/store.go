// Package mongo provides a MongoDB-backed store for subledger using
// the Grove ORM. Identity-keyed collections use the account as _id;
// duplicate checks ride on that. The engine's per-account locks
// serialize writers, so read-then-write sequence assignment is
// race-free.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/discount"
	"github.com/xraph/subledger/group"
	"github.com/xraph/subledger/installment"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/plan"
	"github.com/xraph/subledger/referral"
	sledstore "github.com/xraph/subledger/store"
	"github.com/xraph/subledger/subscription"
)

// Collection name constants.
const (
	colPlans         = "subledger_plans"
	colDiscountCodes = "subledger_discount_codes"
	colHistories     = "subledger_discount_histories"
	colSubscriptions = "subledger_subscriptions"
	colReferralStats = "subledger_referral_stats"
	colGroups        = "subledger_groups"
	colInstallments  = "subledger_installment_plans"
	colReceipts      = "subledger_receipts"
	colEscrows       = "subledger_escrows"
	colPriceFeeds    = "subledger_price_feeds"
)

// compile-time interface check
var _ sledstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all subledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("subledger/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Plan Store ====================

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	count, err := s.mdb.Collection(colPlans).CountDocuments(ctx,
		bson.M{"admin_id": p.AdminID, "code": p.Code})
	if err != nil {
		return fmt.Errorf("subledger/mongo: create plan: %w", err)
	}
	if count > 0 {
		return subledger.ErrPlanExists
	}

	m := toPlanModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("subledger/mongo: create plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, adminID, code string) (*plan.Plan, error) {
	var m planModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"admin_id": adminID, "code": code}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrPlanNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get plan: %w", err)
	}
	return fromPlanModel(&m)
}

func (s *Store) ListPlans(ctx context.Context, adminID string) ([]*plan.Plan, error) {
	var models []planModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"admin_id": adminID}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("subledger/mongo: list plans: %w", err)
	}

	result := make([]*plan.Plan, len(models))
	for i := range models {
		p, err := fromPlanModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

// ==================== Discount Store ====================

func (s *Store) CreateDiscountCode(ctx context.Context, c *discount.Code) error {
	count, err := s.mdb.Collection(colDiscountCodes).CountDocuments(ctx,
		bson.M{"admin_id": c.AdminID, "code": c.Code})
	if err != nil {
		return fmt.Errorf("subledger/mongo: create discount code: %w", err)
	}
	if count > 0 {
		return subledger.ErrDiscountCodeExists
	}

	m := toDiscountCodeModel(c)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("subledger/mongo: create discount code: %w", err)
	}
	return nil
}

func (s *Store) GetDiscountCode(ctx context.Context, adminID, code string) (*discount.Code, error) {
	var m discountCodeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"admin_id": adminID, "code": code}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrDiscountCodeNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get discount code: %w", err)
	}
	return fromDiscountCodeModel(&m)
}

func (s *Store) UpdateDiscountCode(ctx context.Context, c *discount.Code) error {
	m := toDiscountCodeModel(c)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: update discount code: %w", err)
	}
	if res.MatchedCount() == 0 {
		return subledger.ErrDiscountCodeNotFound
	}
	return nil
}

func (s *Store) GetHistory(ctx context.Context, userID string) (*discount.History, error) {
	var m discountHistoryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get history: %w", err)
	}
	return fromDiscountHistoryModel(&m)
}

func (s *Store) PutHistory(ctx context.Context, h *discount.History) error {
	m := toDiscountHistoryModel(h)
	m.UpdatedAt = now()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.UserID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":                m.UserID,
			"id":                 m.ID,
			"used_codes":         m.UsedCodes,
			"subscription_count": m.SubscriptionCount,
			"created_at":         m.CreatedAt,
			"updated_at":         m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: put history: %w", err)
	}
	return nil
}

// ==================== Subscription Store ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	count, err := s.mdb.Collection(colSubscriptions).CountDocuments(ctx,
		bson.M{"_id": sub.UserID})
	if err != nil {
		return fmt.Errorf("subledger/mongo: create subscription: %w", err)
	}
	if count > 0 {
		return subledger.ErrAlreadySubscribed
	}

	m := toSubscriptionModel(sub)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("subledger/mongo: create subscription: %w", err)
	}
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, userID string) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get subscription: %w", err)
	}
	return fromSubscriptionModel(&m)
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.UserID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: update subscription: %w", err)
	}
	if res.MatchedCount() == 0 {
		return subledger.ErrSubscriptionNotFound
	}
	return nil
}

func (s *Store) DeleteSubscription(ctx context.Context, userID string) error {
	res, err := s.mdb.NewDelete((*subscriptionModel)(nil)).
		Filter(bson.M{"_id": userID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: delete subscription: %w", err)
	}
	if res.DeletedCount() == 0 {
		return subledger.ErrSubscriptionNotFound
	}
	return nil
}

// ==================== Referral Store ====================

func (s *Store) GetReferralStats(ctx context.Context, userID string) (*referral.Stats, error) {
	var m referralStatsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get referral stats: %w", err)
	}
	return fromReferralStatsModel(&m)
}

func (s *Store) PutReferralStats(ctx context.Context, st *referral.Stats) error {
	m := toReferralStatsModel(st)
	m.UpdatedAt = now()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.UserID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":                  m.UserID,
			"id":                   m.ID,
			"referrer":             m.Referrer,
			"referred_users":       m.ReferredUsers,
			"total_rewards_earned": m.TotalRewardsEarned,
			"active_referrals":     m.ActiveReferrals,
			"created_at":           m.CreatedAt,
			"updated_at":           m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: put referral stats: %w", err)
	}
	return nil
}

// ==================== Group Store ====================

func (s *Store) CreateGroup(ctx context.Context, g *group.Group) error {
	count, err := s.mdb.Collection(colGroups).CountDocuments(ctx,
		bson.M{"_id": g.AdminID})
	if err != nil {
		return fmt.Errorf("subledger/mongo: create group: %w", err)
	}
	if count > 0 {
		return subledger.ErrGroupExists
	}

	m := toGroupModel(g)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("subledger/mongo: create group: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, adminID string) (*group.Group, error) {
	var m groupModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": adminID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrGroupNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get group: %w", err)
	}
	return fromGroupModel(&m)
}

func (s *Store) UpdateGroup(ctx context.Context, g *group.Group) error {
	m := toGroupModel(g)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.AdminID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: update group: %w", err)
	}
	if res.MatchedCount() == 0 {
		return subledger.ErrGroupNotFound
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, adminID string) error {
	res, err := s.mdb.NewDelete((*groupModel)(nil)).
		Filter(bson.M{"_id": adminID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: delete group: %w", err)
	}
	if res.DeletedCount() == 0 {
		return subledger.ErrGroupNotFound
	}
	return nil
}

// ==================== Installment Store ====================

func (s *Store) CreateInstallmentPlan(ctx context.Context, p *installment.Plan) error {
	seq, err := s.nextSeq(ctx, colInstallments, "payer_id", p.PayerID)
	if err != nil {
		return fmt.Errorf("subledger/mongo: create installment plan: %w", err)
	}
	p.Seq = seq

	m := toInstallmentPlanModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("subledger/mongo: create installment plan: %w", err)
	}
	return nil
}

func (s *Store) GetInstallmentPlan(ctx context.Context, payerID string, seq int64) (*installment.Plan, error) {
	var m installmentPlanModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"payer_id": payerID, "seq": seq}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrInstallmentNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get installment plan: %w", err)
	}
	return fromInstallmentPlanModel(&m)
}

func (s *Store) UpdateInstallmentPlan(ctx context.Context, p *installment.Plan) error {
	m := toInstallmentPlanModel(p)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: update installment plan: %w", err)
	}
	if res.MatchedCount() == 0 {
		return subledger.ErrInstallmentNotFound
	}
	return nil
}

func (s *Store) ListInstallmentPlans(ctx context.Context, payerID string) ([]*installment.Plan, error) {
	var models []installmentPlanModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"payer_id": payerID}).
		Sort(bson.D{{Key: "seq", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("subledger/mongo: list installment plans: %w", err)
	}

	result := make([]*installment.Plan, len(models))
	for i := range models {
		p, err := fromInstallmentPlanModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

// ==================== Receipt Store ====================

func (s *Store) AppendReceipt(ctx context.Context, r *payment.Receipt) error {
	seq, err := s.nextSeq(ctx, colReceipts, "payer", r.Payer)
	if err != nil {
		return fmt.Errorf("subledger/mongo: append receipt: %w", err)
	}
	r.Seq = seq

	m := toReceiptModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("subledger/mongo: append receipt: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, payerID string) ([]*payment.Receipt, error) {
	var models []receiptModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"payer": payerID}).
		Sort(bson.D{{Key: "seq", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("subledger/mongo: list receipts: %w", err)
	}

	result := make([]*payment.Receipt, len(models))
	for i := range models {
		r, err := fromReceiptModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ==================== Escrow Store ====================

func (s *Store) CreateEscrow(ctx context.Context, e *payment.Escrow) error {
	seq, err := s.nextSeq(ctx, colEscrows, "payer", e.Payer)
	if err != nil {
		return fmt.Errorf("subledger/mongo: create escrow: %w", err)
	}
	e.Seq = seq

	m := toEscrowModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("subledger/mongo: create escrow: %w", err)
	}
	return nil
}

func (s *Store) GetEscrow(ctx context.Context, payerID string, seq int64) (*payment.Escrow, error) {
	var m escrowModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"payer": payerID, "seq": seq}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get escrow: %w", err)
	}
	return fromEscrowModel(&m)
}

func (s *Store) UpdateEscrow(ctx context.Context, e *payment.Escrow) error {
	m := toEscrowModel(e)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: update escrow: %w", err)
	}
	if res.MatchedCount() == 0 {
		return subledger.ErrEscrowNotFound
	}
	return nil
}

func (s *Store) ListEscrows(ctx context.Context, payerID string) ([]*payment.Escrow, error) {
	var models []escrowModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"payer": payerID}).
		Sort(bson.D{{Key: "seq", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("subledger/mongo: list escrows: %w", err)
	}

	result := make([]*payment.Escrow, len(models))
	for i := range models {
		e, err := fromEscrowModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// ==================== Price Feed Store ====================

func (s *Store) GetPriceFeed(ctx context.Context, adminID string) (*payment.PriceFeed, error) {
	var m priceFeedModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": adminID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, subledger.ErrPriceFeedNotFound
		}
		return nil, fmt.Errorf("subledger/mongo: get price feed: %w", err)
	}
	return fromPriceFeedModel(&m)
}

func (s *Store) PutPriceFeed(ctx context.Context, f *payment.PriceFeed) error {
	m := toPriceFeedModel(f)
	m.UpdatedAt = now()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.AdminID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":          m.AdminID,
			"id":           m.ID,
			"apt_to_usd":   m.AptToUSD,
			"usdc_to_usd":  m.UsdcToUSD,
			"usdt_to_usd":  m.UsdtToUSD,
			"last_updated": m.LastUpdated,
			"created_at":   m.CreatedAt,
			"updated_at":   m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("subledger/mongo: put price feed: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// nextSeq computes the next per-owner sequence number for append-ordered
// collections via a $max aggregation.
func (s *Store) nextSeq(ctx context.Context, col, ownerField, owner string) (int64, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{ownerField: owner}},
		bson.M{"$group": bson.M{
			"_id": nil,
			"max": bson.M{"$max": "$seq"},
		}},
	}

	cursor, err := s.mdb.Collection(col).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Max int64 `bson:"max"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}

	if len(results) == 0 {
		return 1, nil
	}
	return results[0].Max + 1, nil
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all subledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colPlans: {
			{
				Keys:    bson.D{{Key: "admin_id", Value: 1}, {Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "admin_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colDiscountCodes: {
			{
				Keys:    bson.D{{Key: "admin_id", Value: 1}, {Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colHistories: nil,
		colSubscriptions: {
			{Keys: bson.D{{Key: "plan_admin", Value: 1}, {Key: "plan_code", Value: 1}}},
		},
		colReferralStats: {
			{Keys: bson.D{{Key: "referrer", Value: 1}}},
		},
		colGroups: nil,
		colInstallments: {
			{
				Keys:    bson.D{{Key: "payer_id", Value: 1}, {Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colReceipts: {
			{
				Keys:    bson.D{{Key: "payer", Value: 1}, {Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "payee", Value: 1}}},
		},
		colEscrows: {
			{
				Keys:    bson.D{{Key: "payer", Value: 1}, {Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colPriceFeeds: nil,
	}
}
