// Package subledger provides a composable on-ledger subscription billing
// engine for Go applications.
//
// Subledger is designed as a library, not a service. Import it directly
// into your Go application and point it at a store and a bank. It
// provides:
//
//   - A per-admin plan catalog with immutable priced plans
//   - Discount stacking: seasonal, code, and loyalty discounts resolved
//     to the single best percent
//   - A subscription ledger with grace periods, pro-rated refunds, and
//     in-place plan changes
//   - Referral rewards paid from the plan admin's balance
//   - Group subscriptions with member propagation on renewal
//   - Installment billing with monthly, quarterly, or annual schedules
//   - Multi-token payments with per-payer receipt sequences, tracking
//     escrows, and USD price feed conversion
//
// # Quick Start
//
// Create an engine with your preferred store and bank:
//
//	import (
//	    "github.com/xraph/subledger"
//	    bankmem "github.com/xraph/subledger/bank/memory"
//	    storemem "github.com/xraph/subledger/store/memory"
//	)
//
//	eng := subledger.New(storemem.New(), bankmem.New())
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// Admins publish plans, users enroll:
//
//	_, err := eng.CreatePlan(ctx, "admin", "pro-monthly", 30*86400, subledger.APT(100_000_000))
//	sub, err := eng.Enroll(ctx, "alice", "admin", "pro-monthly", "", "")
//
// All monetary values are integer token units (10^8 per APT, 10^6 per
// USDC/USDT); all division floors. Timestamps are unix seconds from an
// injectable clock.
//
// # Atomicity
//
// Every public operation is a single atomic unit of work. Balances are
// validated before any record is touched, so a failed payment leaves
// no partial state, and per-account locks serialize operations that
// share a user, admin, or referrer.
package subledger
