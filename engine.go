package subledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xraph/subledger/bank"
	"github.com/xraph/subledger/plugin"
	"github.com/xraph/subledger/referral"
	"github.com/xraph/subledger/store"
)

// Defaults for option-overridable engine parameters.
const (
	// DefaultGracePeriod is the soft-cancel grace window: 5 days.
	DefaultGracePeriod int64 = 5 * 24 * 3600

	// DefaultReferralRewardPercent is the referrer's cut of a referee's
	// first payment.
	DefaultReferralRewardPercent = referral.RewardPercent
)

// Engine is the subscription billing engine. Every public operation is
// a single atomic unit of work: balances are validated before any state
// mutation, and records touched by the operation are guarded by
// per-account locks so concurrent callers never observe intermediate
// state.
type Engine struct {
	store   store.Store
	bank    bank.Bank
	plugins *plugin.Registry
	logger  *slog.Logger

	// Clock in unix seconds, injectable for tests.
	now func() int64

	// Configuration
	gracePeriod           int64
	referralRewardPercent int
	priceOracle           string
	arbiter               string

	locks *accountLocks
}

// New creates a new Engine backed by the given store and bank.
func New(s store.Store, b bank.Bank, opts ...Option) *Engine {
	e := &Engine{
		store:                 s,
		bank:                  b,
		plugins:               plugin.NewRegistry(),
		logger:                slog.Default(),
		now:                   func() int64 { return time.Now().Unix() },
		gracePeriod:           DefaultGracePeriod,
		referralRewardPercent: DefaultReferralRewardPercent,
		locks:                 newAccountLocks(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock sets the engine clock, in unix seconds.
func WithClock(now func() int64) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithGracePeriod overrides the soft-cancel grace window, in seconds.
func WithGracePeriod(seconds int64) Option {
	return func(e *Engine) {
		e.gracePeriod = seconds
	}
}

// WithReferralRewardPercent overrides the referral reward percent.
func WithReferralRewardPercent(percent int) Option {
	return func(e *Engine) {
		e.referralRewardPercent = percent
	}
}

// WithPriceOracle designates the account whose price feed backs
// UsdToToken conversions.
func WithPriceOracle(adminID string) Option {
	return func(e *Engine) {
		e.priceOracle = adminID
	}
}

// WithArbiter designates the only account allowed to resolve escrows.
// When unset, any caller identity may resolve.
func WithArbiter(adminID string) Option {
	return func(e *Engine) {
		e.arbiter = adminID
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("subledger started",
		"grace_period_seconds", e.gracePeriod,
		"referral_reward_percent", e.referralRewardPercent,
	)

	return nil
}

// Stop shuts down the engine.
func (e *Engine) Stop() error {
	e.plugins.EmitShutdown(context.Background())
	return e.store.Close()
}

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry {
	return e.plugins
}

// accountLocks serializes operations per account identity. The lock
// table grows with the set of distinct accounts seen; entries are a
// single mutex each and are never evicted.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

func (a *accountLocks) get(key string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	if m, ok := a.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	a.locks[key] = m
	return m
}

// acquire locks every named account in sorted order and returns the
// release function. Sorted acquisition keeps multi-account operations
// deadlock-free; duplicate and empty keys are dropped.
func (a *accountLocks) acquire(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, k := range uniq {
		m := a.get(k)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
