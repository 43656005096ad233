package extension

// Config holds the Subledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.subledger" or "subledger" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// GracePeriodSeconds is the soft-cancel grace window in seconds
	// (default: 432000, five days).
	GracePeriodSeconds int64 `json:"grace_period_seconds" mapstructure:"grace_period_seconds" yaml:"grace_period_seconds"`

	// ReferralRewardPercent is the referrer's cut of a referee's first
	// payment (default: 10).
	ReferralRewardPercent int `json:"referral_reward_percent" mapstructure:"referral_reward_percent" yaml:"referral_reward_percent"`

	// PriceOracle is the account whose price feed backs USD conversions.
	PriceOracle string `json:"price_oracle" mapstructure:"price_oracle" yaml:"price_oracle"`

	// Arbiter is the only account allowed to resolve escrow disputes.
	// When empty, any caller identity may resolve.
	Arbiter string `json:"arbiter" mapstructure:"arbiter" yaml:"arbiter"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GracePeriodSeconds:    5 * 24 * 3600,
		ReferralRewardPercent: 10,
	}
}
