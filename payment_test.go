package subledger_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/types"
)

func TestPay(t *testing.T) {
	e, bk, _ := newTestEngine(t)
	ctx := context.Background()

	fund(bk, "alice", types.USDC(100))
	fund(bk, "bob", types.USDC(0))

	r, err := e.Pay(ctx, "alice", "bob", types.USDC(25), payment.TypeGeneric, "invoice-42")
	if err != nil {
		t.Fatal(err)
	}
	if r.Seq != 1 {
		t.Errorf("receipt seq = %d, want 1", r.Seq)
	}
	if r.ReferenceID != "invoice-42" {
		t.Errorf("reference = %q", r.ReferenceID)
	}
	if got := balance(t, bk, "bob", types.TokenUSDC); got != 25 {
		t.Errorf("bob balance = %d, want 25", got)
	}

	// Receipts sequence per payer.
	r2, err := e.Pay(ctx, "alice", "bob", types.USDC(10), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if r2.Seq != 2 {
		t.Errorf("second receipt seq = %d, want 2", r2.Seq)
	}
	if r2.PaymentType != payment.TypeGeneric {
		t.Errorf("empty payment type should default to generic, got %s", r2.PaymentType)
	}

	receipts, err := e.ReceiptsOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(receipts) != 2 {
		t.Errorf("got %d receipts, want 2", len(receipts))
	}

	t.Run("Validation", func(t *testing.T) {
		if _, err := e.Pay(ctx, "", "bob", types.USDC(1), "", ""); !errors.Is(err, subledger.ErrInvalidInput) {
			t.Errorf("empty payer: got %v", err)
		}
		if _, err := e.Pay(ctx, "alice", "bob", types.USDC(0), "", ""); !errors.Is(err, subledger.ErrInvalidAmount) {
			t.Errorf("zero amount: got %v", err)
		}
	})

	t.Run("UnregisteredPayee", func(t *testing.T) {
		_, err := e.Pay(ctx, "alice", "stranger", types.USDC(5), "", "")
		if !errors.Is(err, subledger.ErrCoinNotRegistered) {
			t.Errorf("expected ErrCoinNotRegistered, got %v", err)
		}
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		_, err := e.Pay(ctx, "alice", "bob", types.USDC(1000), "", "")
		if !errors.Is(err, subledger.ErrInsufficientBalance) {
			t.Errorf("expected ErrInsufficientBalance, got %v", err)
		}
	})
}

func TestEscrowLifecycle(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	esc, err := e.CreateEscrow(ctx, "alice", "bob", types.APT(50), "item not delivered")
	if err != nil {
		t.Fatal(err)
	}
	if esc.Seq != 1 {
		t.Errorf("escrow seq = %d, want 1", esc.Seq)
	}
	if esc.Status != payment.EscrowDisputed {
		t.Errorf("status = %s, want disputed", esc.Status)
	}

	resolved, err := e.ResolveEscrow(ctx, "anyone", "alice", 1, true, "delivery confirmed")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Status != payment.EscrowReleased {
		t.Errorf("status = %s, want released", resolved.Status)
	}
	if resolved.ResolutionNotes != "delivery confirmed" {
		t.Errorf("notes = %q", resolved.ResolutionNotes)
	}

	// Exactly-once resolution.
	if _, err := e.ResolveEscrow(ctx, "anyone", "alice", 1, false, ""); !errors.Is(err, subledger.ErrDisputeAlreadyResolved) {
		t.Errorf("expected ErrDisputeAlreadyResolved, got %v", err)
	}

	t.Run("RefundOutcome", func(t *testing.T) {
		if _, err := e.CreateEscrow(ctx, "alice", "bob", types.APT(10), "wrong item"); err != nil {
			t.Fatal(err)
		}
		resolved, err := e.ResolveEscrow(ctx, "anyone", "alice", 2, false, "buyer favored")
		if err != nil {
			t.Fatal(err)
		}
		if resolved.Status != payment.EscrowRefunded {
			t.Errorf("status = %s, want refunded", resolved.Status)
		}
	})

	escrows, err := e.EscrowsOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(escrows) != 2 {
		t.Errorf("got %d escrows, want 2", len(escrows))
	}

	t.Run("Unknown", func(t *testing.T) {
		if _, err := e.ResolveEscrow(ctx, "anyone", "alice", 99, true, ""); !errors.Is(err, subledger.ErrEscrowNotFound) {
			t.Errorf("expected ErrEscrowNotFound, got %v", err)
		}
	})
}

func TestEscrowArbiter(t *testing.T) {
	e, _, _ := newTestEngine(t, subledger.WithArbiter("judge"))
	ctx := context.Background()

	if _, err := e.CreateEscrow(ctx, "alice", "bob", types.APT(50), "dispute"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.ResolveEscrow(ctx, "alice", "alice", 1, true, ""); !errors.Is(err, subledger.ErrUnauthorized) {
		t.Errorf("non-arbiter resolution: got %v", err)
	}
	if _, err := e.ResolveEscrow(ctx, "judge", "alice", 1, true, ""); err != nil {
		t.Errorf("arbiter resolution failed: %v", err)
	}
}

func TestPriceFeed(t *testing.T) {
	e, _, _ := newTestEngine(t, subledger.WithPriceOracle("oracle"))
	ctx := context.Background()

	// APT at $5.00, stablecoins at $1.00.
	f, err := e.InitPriceFeed(ctx, "oracle", 500, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if f.AptToUSD != 500 {
		t.Errorf("apt price = %d, want 500", f.AptToUSD)
	}

	t.Run("DoubleInit", func(t *testing.T) {
		_, err := e.InitPriceFeed(ctx, "oracle", 600, 100, 100)
		if !errors.Is(err, subledger.ErrAlreadyInitialized) {
			t.Errorf("expected ErrAlreadyInitialized, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		f, err := e.UpdatePriceFeed(ctx, "oracle", 800, 100, 101)
		if err != nil {
			t.Fatal(err)
		}
		if f.AptToUSD != 800 || f.UsdtToUSD != 101 {
			t.Errorf("updated feed = %+v", f)
		}

		got, err := e.PriceFeedOf(ctx, "oracle")
		if err != nil {
			t.Fatal(err)
		}
		if got.AptToUSD != 800 {
			t.Errorf("persisted apt price = %d, want 800", got.AptToUSD)
		}
	})

	t.Run("UpdateBeforeInit", func(t *testing.T) {
		_, err := e.UpdatePriceFeed(ctx, "nobody", 500, 100, 100)
		if !errors.Is(err, subledger.ErrPriceFeedNotFound) {
			t.Errorf("expected ErrPriceFeedNotFound, got %v", err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if _, err := e.InitPriceFeed(ctx, "other", 0, 100, 100); !errors.Is(err, subledger.ErrInvalidPriceFeed) {
			t.Errorf("zero price: got %v", err)
		}
		if _, err := e.UpdatePriceFeed(ctx, "oracle", 500, -1, 100); !errors.Is(err, subledger.ErrInvalidPriceFeed) {
			t.Errorf("negative price: got %v", err)
		}
	})
}

func TestUsdToToken(t *testing.T) {
	e, _, _ := newTestEngine(t, subledger.WithPriceOracle("oracle"))
	ctx := context.Background()

	if _, err := e.InitPriceFeed(ctx, "oracle", 500, 100, 100); err != nil {
		t.Fatal(err)
	}

	// $10.00 at $5.00/APT buys 2 APT = 200_000_000 octas.
	amt, err := e.UsdToToken(ctx, 1000, types.TokenAPT)
	if err != nil {
		t.Fatal(err)
	}
	if !amt.Equal(types.APT(200_000_000)) {
		t.Errorf("conversion = %s, want 2 APT", amt)
	}

	// $10.00 at $1.00/USDC buys 10 USDC.
	amt, err = e.UsdToToken(ctx, 1000, types.TokenUSDC)
	if err != nil {
		t.Fatal(err)
	}
	if !amt.Equal(types.USDC(10_000_000)) {
		t.Errorf("conversion = %s, want 10 USDC", amt)
	}

	t.Run("UnsupportedToken", func(t *testing.T) {
		if _, err := e.UsdToToken(ctx, 1000, types.Token("doge")); !errors.Is(err, subledger.ErrUnsupportedToken) {
			t.Errorf("expected ErrUnsupportedToken, got %v", err)
		}
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		if _, err := e.UsdToToken(ctx, -1, types.TokenAPT); !errors.Is(err, subledger.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		// A cent amount whose 10^8 scaling exceeds int64 is rejected
		// rather than silently wrapping.
		if _, err := e.UsdToToken(ctx, math.MaxInt64/int64(100_000_000)+1, types.TokenAPT); !errors.Is(err, subledger.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestUsdToTokenWithoutOracle(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.UsdToToken(ctx, 1000, types.TokenAPT); !errors.Is(err, subledger.ErrPriceFeedNotFound) {
		t.Errorf("expected ErrPriceFeedNotFound, got %v", err)
	}
}
