// Package extension provides the Forge extension adapter for Subledger.
//
// It implements the forge.Extension interface to integrate Subledger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.subledger" or
// "subledger" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/bank"
	bankmem "github.com/xraph/subledger/bank/memory"
	"github.com/xraph/subledger/store"
	"github.com/xraph/subledger/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "subledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "On-ledger subscription billing engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Subledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *subledger.Engine
	store      store.Store
	bank       bank.Bank
	engineOpts []subledger.Option
}

// New creates a new Subledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Subledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *subledger.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the billing engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Fall back to in-memory backends when none were provided
	// programmatically.
	if e.store == nil {
		e.store = memory.New()
	}
	if e.bank == nil {
		e.bank = bankmem.New()
	}

	opts := e.buildEngineOpts()

	eng := subledger.New(e.store, e.bank, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*subledger.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("subledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("subledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs subledger.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []subledger.Option {
	opts := make([]subledger.Option, 0, len(e.engineOpts)+4)

	if e.config.GracePeriodSeconds > 0 {
		opts = append(opts, subledger.WithGracePeriod(e.config.GracePeriodSeconds))
	}
	if e.config.ReferralRewardPercent > 0 {
		opts = append(opts, subledger.WithReferralRewardPercent(e.config.ReferralRewardPercent))
	}
	if e.config.PriceOracle != "" {
		opts = append(opts, subledger.WithPriceOracle(e.config.PriceOracle))
	}
	if e.config.Arbiter != "" {
		opts = append(opts, subledger.WithArbiter(e.config.Arbiter))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("subledger: configuration is required but not found in config files; " +
				"ensure 'extensions.subledger' or 'subledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("subledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("grace_period_seconds", e.config.GracePeriodSeconds),
		forge.F("referral_reward_percent", e.config.ReferralRewardPercent),
		forge.F("price_oracle", e.config.PriceOracle),
		forge.F("arbiter", e.config.Arbiter),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.subledger" first (namespaced pattern).
	if cm.IsSet("extensions.subledger") {
		if err := cm.Bind("extensions.subledger", &cfg); err == nil {
			e.Logger().Debug("subledger: loaded config from file",
				forge.F("key", "extensions.subledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("subledger: failed to bind extensions.subledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "subledger" key.
	if cm.IsSet("subledger") {
		if err := cm.Bind("subledger", &cfg); err == nil {
			e.Logger().Debug("subledger: loaded config from file",
				forge.F("key", "subledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("subledger: failed to bind subledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.GracePeriodSeconds == 0 {
		cfg.GracePeriodSeconds = defaults.GracePeriodSeconds
	}
	if cfg.ReferralRewardPercent == 0 {
		cfg.ReferralRewardPercent = defaults.ReferralRewardPercent
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.PriceOracle == "" && programmaticConfig.PriceOracle != "" {
		yamlConfig.PriceOracle = programmaticConfig.PriceOracle
	}
	if yamlConfig.Arbiter == "" && programmaticConfig.Arbiter != "" {
		yamlConfig.Arbiter = programmaticConfig.Arbiter
	}

	// Numeric fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.GracePeriodSeconds == 0 && programmaticConfig.GracePeriodSeconds != 0 {
		yamlConfig.GracePeriodSeconds = programmaticConfig.GracePeriodSeconds
	}
	if yamlConfig.ReferralRewardPercent == 0 && programmaticConfig.ReferralRewardPercent != 0 {
		yamlConfig.ReferralRewardPercent = programmaticConfig.ReferralRewardPercent
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
