package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the subledger store.
var Migrations = migrate.NewGroup("subledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_subledger_plans",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_plans (
    id          TEXT PRIMARY KEY,
    admin_id    TEXT NOT NULL DEFAULT '',
    code        TEXT NOT NULL DEFAULT '',
    duration    BIGINT NOT NULL DEFAULT 0,
    price_units BIGINT NOT NULL DEFAULT 0,
    price_token TEXT NOT NULL DEFAULT 'apt',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_subledger_plans_admin_code ON subledger_plans (admin_id, code);
CREATE INDEX IF NOT EXISTS idx_subledger_plans_admin ON subledger_plans (admin_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_plans`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_discount_codes",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_discount_codes (
    id          TEXT PRIMARY KEY,
    admin_id    TEXT NOT NULL DEFAULT '',
    code        TEXT NOT NULL DEFAULT '',
    percent     INT NOT NULL DEFAULT 0,
    expires_at  BIGINT NOT NULL DEFAULT 0,
    usage_count BIGINT NOT NULL DEFAULT 0,
    max_uses    BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_subledger_codes_admin_code ON subledger_discount_codes (admin_id, code);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_discount_codes`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_discount_histories",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_discount_histories (
    user_id            TEXT PRIMARY KEY,
    id                 TEXT NOT NULL DEFAULT '',
    used_codes         JSONB NOT NULL DEFAULT '[]',
    subscription_count BIGINT NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_discount_histories`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_subscriptions",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_subscriptions (
    user_id         TEXT PRIMARY KEY,
    id              TEXT NOT NULL DEFAULT '',
    plan_admin      TEXT NOT NULL DEFAULT '',
    plan_code       TEXT NOT NULL DEFAULT '',
    started_at      BIGINT NOT NULL DEFAULT 0,
    expires_at      BIGINT NOT NULL DEFAULT 0,
    in_grace_period BOOLEAN NOT NULL DEFAULT FALSE,
    grace_ends_at   BIGINT NOT NULL DEFAULT 0,
    payment_units   BIGINT NOT NULL DEFAULT 0,
    payment_token   TEXT NOT NULL DEFAULT 'apt',
    auto_renew      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_subledger_subs_admin ON subledger_subscriptions (plan_admin);
CREATE INDEX IF NOT EXISTS idx_subledger_subs_expires ON subledger_subscriptions (expires_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_subscriptions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_referral_stats",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_referral_stats (
    user_id              TEXT PRIMARY KEY,
    id                   TEXT NOT NULL DEFAULT '',
    referrer             TEXT NOT NULL DEFAULT '',
    referred_users       JSONB NOT NULL DEFAULT '[]',
    total_rewards_earned BIGINT NOT NULL DEFAULT 0,
    active_referrals     BIGINT NOT NULL DEFAULT 0,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_subledger_referrals_referrer ON subledger_referral_stats (referrer);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_referral_stats`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_groups",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_groups (
    admin_id    TEXT PRIMARY KEY,
    id          TEXT NOT NULL DEFAULT '',
    plan_code   TEXT NOT NULL DEFAULT '',
    expires_at  BIGINT NOT NULL DEFAULT 0,
    members     JSONB NOT NULL DEFAULT '[]',
    max_members INT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_groups`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_installment_plans",
			Version: "20240101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_installment_plans (
    id                 TEXT PRIMARY KEY,
    payer_id           TEXT NOT NULL DEFAULT '',
    seq                BIGINT NOT NULL DEFAULT 0,
    total_units        BIGINT NOT NULL DEFAULT 0,
    total_token        TEXT NOT NULL DEFAULT 'apt',
    num_installments   INT NOT NULL DEFAULT 0,
    installment_units  BIGINT NOT NULL DEFAULT 0,
    frequency_months   INT NOT NULL DEFAULT 1,
    payments_made      INT NOT NULL DEFAULT 0,
    next_payment_due   BIGINT NOT NULL DEFAULT 0,
    completed          BOOLEAN NOT NULL DEFAULT FALSE,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_subledger_installments_payer_seq ON subledger_installment_plans (payer_id, seq);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_installment_plans`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_receipts",
			Version: "20240101000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_receipts (
    id           TEXT PRIMARY KEY,
    seq          BIGINT NOT NULL DEFAULT 0,
    payer        TEXT NOT NULL DEFAULT '',
    payee        TEXT NOT NULL DEFAULT '',
    amount_units BIGINT NOT NULL DEFAULT 0,
    amount_token TEXT NOT NULL DEFAULT 'apt',
    payment_type TEXT NOT NULL DEFAULT '',
    reference_id TEXT NOT NULL DEFAULT '',
    paid_at      BIGINT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_subledger_receipts_payer_seq ON subledger_receipts (payer, seq);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_receipts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_escrows",
			Version: "20240101000009",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_escrows (
    id               TEXT PRIMARY KEY,
    seq              BIGINT NOT NULL DEFAULT 0,
    payer            TEXT NOT NULL DEFAULT '',
    payee            TEXT NOT NULL DEFAULT '',
    amount_units     BIGINT NOT NULL DEFAULT 0,
    amount_token     TEXT NOT NULL DEFAULT 'apt',
    status           TEXT NOT NULL DEFAULT 'disputed',
    dispute_reason   TEXT NOT NULL DEFAULT '',
    resolution_notes TEXT NOT NULL DEFAULT '',
    opened_at        BIGINT NOT NULL DEFAULT 0,
    resolved_at      BIGINT NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_subledger_escrows_payer_seq ON subledger_escrows (payer, seq);
CREATE INDEX IF NOT EXISTS idx_subledger_escrows_status ON subledger_escrows (payer, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_escrows`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_subledger_price_feeds",
			Version: "20240101000010",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS subledger_price_feeds (
    admin_id     TEXT PRIMARY KEY,
    id           TEXT NOT NULL DEFAULT '',
    apt_to_usd   BIGINT NOT NULL DEFAULT 0,
    usdc_to_usd  BIGINT NOT NULL DEFAULT 0,
    usdt_to_usd  BIGINT NOT NULL DEFAULT 0,
    last_updated BIGINT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS subledger_price_feeds`)
				return err
			},
		},
	)
}
