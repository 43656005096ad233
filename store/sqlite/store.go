// Package sqlite provides a SQLite-backed store for subledger using
// the Grove ORM. Suited to embedded and single-node deployments; the
// engine's per-account locks serialize writers, so select-then-insert
// duplicate checks are race-free.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

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

// compile-time interface check
var _ sledstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("subledger/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("subledger/sqlite: migration failed: %w", err)
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
	exists, err := s.rowExists(ctx, `
		SELECT EXISTS (SELECT 1 FROM subledger_plans WHERE admin_id = ? AND code = ?)
	`, p.AdminID, p.Code)
	if err != nil {
		return err
	}
	if exists {
		return subledger.ErrPlanExists
	}

	m := toPlanModel(p)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPlan(ctx context.Context, adminID, code string) (*plan.Plan, error) {
	m := new(planModel)
	err := s.sdb.NewSelect(m).
		Where("admin_id = ?", adminID).
		Where("code = ?", code).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrPlanNotFound
		}
		return nil, err
	}
	return fromPlanModel(m)
}

func (s *Store) ListPlans(ctx context.Context, adminID string) ([]*plan.Plan, error) {
	var models []planModel
	err := s.sdb.NewSelect(&models).
		Where("admin_id = ?", adminID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	exists, err := s.rowExists(ctx, `
		SELECT EXISTS (SELECT 1 FROM subledger_discount_codes WHERE admin_id = ? AND code = ?)
	`, c.AdminID, c.Code)
	if err != nil {
		return err
	}
	if exists {
		return subledger.ErrDiscountCodeExists
	}

	m := toDiscountCodeModel(c)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetDiscountCode(ctx context.Context, adminID, code string) (*discount.Code, error) {
	m := new(discountCodeModel)
	err := s.sdb.NewSelect(m).
		Where("admin_id = ?", adminID).
		Where("code = ?", code).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrDiscountCodeNotFound
		}
		return nil, err
	}
	return fromDiscountCodeModel(m)
}

func (s *Store) UpdateDiscountCode(ctx context.Context, c *discount.Code) error {
	m := toDiscountCodeModel(c)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return subledger.ErrDiscountCodeNotFound
	}
	return nil
}

func (s *Store) GetHistory(ctx context.Context, userID string) (*discount.History, error) {
	m := new(discountHistoryModel)
	err := s.sdb.NewSelect(m).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrNotFound
		}
		return nil, err
	}
	return fromDiscountHistoryModel(m)
}

func (s *Store) PutHistory(ctx context.Context, h *discount.History) error {
	m := toDiscountHistoryModel(h)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(user_id) DO UPDATE").
		Set("used_codes = EXCLUDED.used_codes").
		Set("subscription_count = EXCLUDED.subscription_count").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Subscription Store ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	exists, err := s.rowExists(ctx, `
		SELECT EXISTS (SELECT 1 FROM subledger_subscriptions WHERE user_id = ?)
	`, sub.UserID)
	if err != nil {
		return err
	}
	if exists {
		return subledger.ErrAlreadySubscribed
	}

	m := toSubscriptionModel(sub)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSubscription(ctx context.Context, userID string) (*subscription.Subscription, error) {
	m := new(subscriptionModel)
	err := s.sdb.NewSelect(m).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return fromSubscriptionModel(m)
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return subledger.ErrSubscriptionNotFound
	}
	return nil
}

func (s *Store) DeleteSubscription(ctx context.Context, userID string) error {
	res, err := s.sdb.NewDelete((*subscriptionModel)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return subledger.ErrSubscriptionNotFound
	}
	return nil
}

// ==================== Referral Store ====================

func (s *Store) GetReferralStats(ctx context.Context, userID string) (*referral.Stats, error) {
	m := new(referralStatsModel)
	err := s.sdb.NewSelect(m).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrNotFound
		}
		return nil, err
	}
	return fromReferralStatsModel(m)
}

func (s *Store) PutReferralStats(ctx context.Context, st *referral.Stats) error {
	m := toReferralStatsModel(st)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(user_id) DO UPDATE").
		Set("referrer = EXCLUDED.referrer").
		Set("referred_users = EXCLUDED.referred_users").
		Set("total_rewards_earned = EXCLUDED.total_rewards_earned").
		Set("active_referrals = EXCLUDED.active_referrals").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Group Store ====================

func (s *Store) CreateGroup(ctx context.Context, g *group.Group) error {
	exists, err := s.rowExists(ctx, `
		SELECT EXISTS (SELECT 1 FROM subledger_groups WHERE admin_id = ?)
	`, g.AdminID)
	if err != nil {
		return err
	}
	if exists {
		return subledger.ErrGroupExists
	}

	m := toGroupModel(g)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetGroup(ctx context.Context, adminID string) (*group.Group, error) {
	m := new(groupModel)
	err := s.sdb.NewSelect(m).
		Where("admin_id = ?", adminID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrGroupNotFound
		}
		return nil, err
	}
	return fromGroupModel(m)
}

func (s *Store) UpdateGroup(ctx context.Context, g *group.Group) error {
	m := toGroupModel(g)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return subledger.ErrGroupNotFound
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, adminID string) error {
	res, err := s.sdb.NewDelete((*groupModel)(nil)).
		Where("admin_id = ?", adminID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return subledger.ErrGroupNotFound
	}
	return nil
}

// ==================== Installment Store ====================

func (s *Store) CreateInstallmentPlan(ctx context.Context, p *installment.Plan) error {
	seq, err := s.nextSeq(ctx, "subledger_installment_plans", "payer_id", p.PayerID)
	if err != nil {
		return err
	}
	p.Seq = seq

	m := toInstallmentPlanModel(p)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetInstallmentPlan(ctx context.Context, payerID string, seq int64) (*installment.Plan, error) {
	m := new(installmentPlanModel)
	err := s.sdb.NewSelect(m).
		Where("payer_id = ?", payerID).
		Where("seq = ?", seq).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrInstallmentNotFound
		}
		return nil, err
	}
	return fromInstallmentPlanModel(m)
}

func (s *Store) UpdateInstallmentPlan(ctx context.Context, p *installment.Plan) error {
	m := toInstallmentPlanModel(p)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return subledger.ErrInstallmentNotFound
	}
	return nil
}

func (s *Store) ListInstallmentPlans(ctx context.Context, payerID string) ([]*installment.Plan, error) {
	var models []installmentPlanModel
	err := s.sdb.NewSelect(&models).
		Where("payer_id = ?", payerID).
		OrderExpr("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	seq, err := s.nextSeq(ctx, "subledger_receipts", "payer", r.Payer)
	if err != nil {
		return err
	}
	r.Seq = seq

	m := toReceiptModel(r)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListReceipts(ctx context.Context, payerID string) ([]*payment.Receipt, error) {
	var models []receiptModel
	err := s.sdb.NewSelect(&models).
		Where("payer = ?", payerID).
		OrderExpr("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	seq, err := s.nextSeq(ctx, "subledger_escrows", "payer", e.Payer)
	if err != nil {
		return err
	}
	e.Seq = seq

	m := toEscrowModel(e)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetEscrow(ctx context.Context, payerID string, seq int64) (*payment.Escrow, error) {
	m := new(escrowModel)
	err := s.sdb.NewSelect(m).
		Where("payer = ?", payerID).
		Where("seq = ?", seq).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrEscrowNotFound
		}
		return nil, err
	}
	return fromEscrowModel(m)
}

func (s *Store) UpdateEscrow(ctx context.Context, e *payment.Escrow) error {
	m := toEscrowModel(e)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return subledger.ErrEscrowNotFound
	}
	return nil
}

func (s *Store) ListEscrows(ctx context.Context, payerID string) ([]*payment.Escrow, error) {
	var models []escrowModel
	err := s.sdb.NewSelect(&models).
		Where("payer = ?", payerID).
		OrderExpr("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	m := new(priceFeedModel)
	err := s.sdb.NewSelect(m).
		Where("admin_id = ?", adminID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, subledger.ErrPriceFeedNotFound
		}
		return nil, err
	}
	return fromPriceFeedModel(m)
}

func (s *Store) PutPriceFeed(ctx context.Context, f *payment.PriceFeed) error {
	m := toPriceFeedModel(f)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(admin_id) DO UPDATE").
		Set("apt_to_usd = EXCLUDED.apt_to_usd").
		Set("usdc_to_usd = EXCLUDED.usdc_to_usd").
		Set("usdt_to_usd = EXCLUDED.usdt_to_usd").
		Set("last_updated = EXCLUDED.last_updated").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// rowExists runs an EXISTS query with the given args.
func (s *Store) rowExists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := s.sdb.NewRaw(query, args...).Scan(ctx, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// nextSeq assigns the next per-owner sequence number for append-ordered
// tables. Safe under the engine's per-account locks.
func (s *Store) nextSeq(ctx context.Context, table, ownerCol, owner string) (int64, error) {
	var seq int64
	query := fmt.Sprintf(`SELECT COALESCE(MAX(seq), 0) + 1 FROM %s WHERE %s = ?`, table, ownerCol)
	if err := s.sdb.NewRaw(query, owner).Scan(ctx, &seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
