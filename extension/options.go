package extension

import (
	"github.com/xraph/subledger"
	"github.com/xraph/subledger/bank"
	"github.com/xraph/subledger/plugin"
	"github.com/xraph/subledger/store"
)

// Option configures the Subledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the billing engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithBank sets the bank backing transfers and balance checks.
func WithBank(b bank.Bank) Option {
	return func(e *Extension) {
		e.bank = b
	}
}

// WithEngineOption passes a subledger.Option through to the underlying engine.
func WithEngineOption(opt subledger.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a subledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, subledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithGracePeriodSeconds sets the soft-cancel grace window in seconds.
func WithGracePeriodSeconds(seconds int64) Option {
	return func(e *Extension) { e.config.GracePeriodSeconds = seconds }
}

// WithReferralRewardPercent sets the referrer's cut of a referee's first payment.
func WithReferralRewardPercent(percent int) Option {
	return func(e *Extension) { e.config.ReferralRewardPercent = percent }
}

// WithPriceOracle sets the account whose price feed backs USD conversions.
func WithPriceOracle(adminID string) Option {
	return func(e *Extension) { e.config.PriceOracle = adminID }
}

// WithArbiter sets the only account allowed to resolve escrow disputes.
func WithArbiter(adminID string) Option {
	return func(e *Extension) { e.config.Arbiter = adminID }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
