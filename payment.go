package subledger

import (
	"context"
	"errors"
	"math"

	"github.com/xraph/subledger/bank"
	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/types"
)

// Pay performs a generic token transfer between two accounts and
// appends a receipt to the payer's history. paymentType defaults to
// generic; referenceID is free-form correlation data for the receipt.
func (e *Engine) Pay(ctx context.Context, payer, payee string, amount types.Amount, paymentType payment.Type, referenceID string) (*payment.Receipt, error) {
	if payer == "" || payee == "" {
		return nil, ErrInvalidInput
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if paymentType == "" {
		paymentType = payment.TypeGeneric
	}

	unlock := e.locks.acquire(payer, payee)
	defer unlock()

	if err := e.transfer(ctx, payer, payee, amount); err != nil {
		return nil, err
	}

	r, err := e.issueReceipt(ctx, payer, payee, amount, paymentType, referenceID)
	if err != nil {
		return nil, err
	}

	e.plugins.EmitMultiTokenPayment(ctx, &event.MultiTokenPaymentMade{
		Payer:       payer,
		Payee:       payee,
		Amount:      amount,
		TokenType:   string(amount.Token),
		PaymentType: string(paymentType),
	})
	return r, nil
}

// ReceiptsOf returns a payer's receipts in issue order.
func (e *Engine) ReceiptsOf(ctx context.Context, payerID string) ([]*payment.Receipt, error) {
	return e.store.ListReceipts(ctx, payerID)
}

// CreateEscrow records a payment dispute. No funds move and nothing is
// locked; the record opens in the disputed state and exists so that an
// off-ledger arbiter can track and resolve the disagreement.
func (e *Engine) CreateEscrow(ctx context.Context, payer, payee string, amount types.Amount, reason string) (*payment.Escrow, error) {
	if payer == "" || payee == "" {
		return nil, ErrInvalidInput
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	unlock := e.locks.acquire(payer)
	defer unlock()

	esc := &payment.Escrow{
		Entity:        types.NewEntity(),
		ID:            id.NewEscrowID(),
		Payer:         payer,
		Payee:         payee,
		Amount:        amount,
		Status:        payment.EscrowDisputed,
		DisputeReason: reason,
		CreatedAtUnix: e.now(),
	}
	if err := e.store.CreateEscrow(ctx, esc); err != nil {
		return nil, err
	}

	e.logger.Info("escrow created",
		"payer", payer,
		"payee", payee,
		"seq", esc.Seq,
		"amount", amount.String(),
	)

	e.plugins.EmitEscrowCreated(ctx, &event.EscrowCreated{
		EscrowID:  esc.ID,
		Seq:       esc.Seq,
		Payer:     payer,
		Payee:     payee,
		Amount:    amount,
		TokenType: string(amount.Token),
		Reason:    reason,
	})
	return esc, nil
}

// ResolveEscrow closes a dispute exactly once, recording whether the
// outcome favored the payee. Resolution is bookkeeping only and moves
// no funds. When an arbiter account is configured, only that identity
// may resolve.
func (e *Engine) ResolveEscrow(ctx context.Context, resolver, payer string, seq int64, releaseToPayee bool, notes string) (*payment.Escrow, error) {
	if e.arbiter != "" && resolver != e.arbiter {
		return nil, ErrUnauthorized
	}

	unlock := e.locks.acquire(payer)
	defer unlock()

	esc, err := e.store.GetEscrow(ctx, payer, seq)
	if err != nil {
		return nil, err
	}
	if esc.Status != payment.EscrowDisputed {
		return nil, ErrDisputeAlreadyResolved
	}

	if releaseToPayee {
		esc.Status = payment.EscrowReleased
	} else {
		esc.Status = payment.EscrowRefunded
	}
	esc.ResolutionNotes = notes
	esc.ResolvedAtUnix = e.now()
	esc.Touch()

	if err := e.store.UpdateEscrow(ctx, esc); err != nil {
		return nil, err
	}

	e.logger.Info("escrow resolved",
		"payer", payer,
		"seq", seq,
		"status", string(esc.Status),
	)

	e.plugins.EmitEscrowResolved(ctx, &event.EscrowResolved{
		EscrowID:        esc.ID,
		Seq:             esc.Seq,
		ReleasedToPayee: releaseToPayee,
		Notes:           notes,
	})
	return esc, nil
}

// EscrowsOf returns a payer's escrow records in creation order.
func (e *Engine) EscrowsOf(ctx context.Context, payerID string) ([]*payment.Escrow, error) {
	return e.store.ListEscrows(ctx, payerID)
}

// InitPriceFeed publishes an admin's USD price feed for the first
// time. Prices are integer cents per whole token and must all be
// positive.
func (e *Engine) InitPriceFeed(ctx context.Context, adminID string, aptCents, usdcCents, usdtCents int64) (*payment.PriceFeed, error) {
	if adminID == "" {
		return nil, ErrInvalidInput
	}
	if aptCents <= 0 || usdcCents <= 0 || usdtCents <= 0 {
		return nil, ErrInvalidPriceFeed
	}

	unlock := e.locks.acquire(adminID)
	defer unlock()

	if _, err := e.store.GetPriceFeed(ctx, adminID); err == nil {
		return nil, ErrAlreadyInitialized
	} else if !errors.Is(err, ErrPriceFeedNotFound) {
		return nil, err
	}

	f := &payment.PriceFeed{
		Entity:      types.NewEntity(),
		ID:          id.NewPriceFeedID(),
		AdminID:     adminID,
		AptToUSD:    aptCents,
		UsdcToUSD:   usdcCents,
		UsdtToUSD:   usdtCents,
		LastUpdated: e.now(),
	}
	if err := e.store.PutPriceFeed(ctx, f); err != nil {
		return nil, err
	}

	e.emitPriceFeed(ctx, f)
	return f, nil
}

// UpdatePriceFeed refreshes an admin's published USD prices.
func (e *Engine) UpdatePriceFeed(ctx context.Context, adminID string, aptCents, usdcCents, usdtCents int64) (*payment.PriceFeed, error) {
	if aptCents <= 0 || usdcCents <= 0 || usdtCents <= 0 {
		return nil, ErrInvalidPriceFeed
	}

	unlock := e.locks.acquire(adminID)
	defer unlock()

	f, err := e.store.GetPriceFeed(ctx, adminID)
	if err != nil {
		return nil, err
	}

	f.AptToUSD = aptCents
	f.UsdcToUSD = usdcCents
	f.UsdtToUSD = usdtCents
	f.LastUpdated = e.now()
	f.Touch()

	if err := e.store.PutPriceFeed(ctx, f); err != nil {
		return nil, err
	}

	e.emitPriceFeed(ctx, f)
	return f, nil
}

// PriceFeedOf returns an admin's published price feed.
func (e *Engine) PriceFeedOf(ctx context.Context, adminID string) (*payment.PriceFeed, error) {
	return e.store.GetPriceFeed(ctx, adminID)
}

// UsdToToken converts a USD cent amount into token units using the
// configured oracle's feed: amount = cents * unit_scale / price_cents,
// floored.
func (e *Engine) UsdToToken(ctx context.Context, usdCents int64, token types.TokenType) (types.Amount, error) {
	if usdCents < 0 {
		return types.Amount{}, ErrInvalidAmount
	}
	switch token {
	case types.TokenAPT, types.TokenUSDC, types.TokenUSDT:
	default:
		return types.Amount{}, ErrUnsupportedToken
	}
	if e.priceOracle == "" {
		return types.Amount{}, ErrPriceFeedNotFound
	}

	f, err := e.store.GetPriceFeed(ctx, e.priceOracle)
	if err != nil {
		return types.Amount{}, err
	}
	price := f.PriceCents(token)
	if price <= 0 {
		return types.Amount{}, ErrInvalidPriceFeed
	}

	// The scaled intermediate must fit in int64 before the division.
	scale := token.UnitScale()
	if usdCents > math.MaxInt64/scale {
		return types.Amount{}, ErrInvalidAmount
	}

	return types.Amount{
		Units: usdCents * scale / price,
		Token: token,
	}, nil
}

func (e *Engine) emitPriceFeed(ctx context.Context, f *payment.PriceFeed) {
	e.logger.Info("price feed updated",
		"admin", f.AdminID,
		"apt_cents", f.AptToUSD,
		"usdc_cents", f.UsdcToUSD,
		"usdt_cents", f.UsdtToUSD,
	)
	e.plugins.EmitPriceFeedUpdated(ctx, &event.PriceFeedUpdated{
		AptToUSD:  f.AptToUSD,
		UsdcToUSD: f.UsdcToUSD,
		UsdtToUSD: f.UsdtToUSD,
		UpdatedAt: f.LastUpdated,
	})
}

// issueReceipt appends a receipt to the payer's history and emits the
// corresponding event. The store assigns the per-payer sequence.
func (e *Engine) issueReceipt(ctx context.Context, payer, payee string, amount types.Amount, paymentType payment.Type, referenceID string) (*payment.Receipt, error) {
	r := &payment.Receipt{
		Entity:      types.NewEntity(),
		ID:          id.NewReceiptID(),
		Payer:       payer,
		Payee:       payee,
		Amount:      amount,
		PaymentType: paymentType,
		ReferenceID: referenceID,
		Timestamp:   e.now(),
	}
	if err := e.store.AppendReceipt(ctx, r); err != nil {
		return nil, err
	}

	e.plugins.EmitReceiptIssued(ctx, &event.ReceiptIssued{
		ReceiptID:   r.ID,
		Seq:         r.Seq,
		Payer:       payer,
		Payee:       payee,
		Amount:      amount,
		TokenType:   string(amount.Token),
		PaymentType: string(paymentType),
		ReferenceID: referenceID,
		Timestamp:   r.Timestamp,
	})
	return r, nil
}

// chargeForPlan validates that the payer can cover a subscription
// payment and performs the transfer. On a funds or registration
// failure it emits PaymentFailed and returns without mutating
// anything, preserving the all-or-nothing enrollment guarantee.
func (e *Engine) chargeForPlan(ctx context.Context, payer, planAdmin, planCode string, amount types.Amount) error {
	if !e.bank.IsRegistered(ctx, payer, amount.Token) {
		e.emitPaymentFailed(ctx, payer, planCode, amount, "payer not registered for token")
		return ErrCoinNotRegistered
	}

	bal, err := e.bank.Balance(ctx, payer, amount.Token)
	if err != nil {
		return mapBankError(err)
	}
	if bal.LessThan(amount) {
		e.emitPaymentFailed(ctx, payer, planCode, amount, "insufficient balance")
		return ErrInsufficientBalance
	}

	if err := e.bank.Transfer(ctx, payer, planAdmin, amount); err != nil {
		return mapBankError(err)
	}
	return nil
}

func (e *Engine) emitPaymentFailed(ctx context.Context, from, planCode string, required types.Amount, reason string) {
	e.logger.Warn("payment failed",
		"from", from,
		"plan", planCode,
		"required", required.String(),
		"reason", reason,
	)
	e.plugins.EmitPaymentFailed(ctx, &event.PaymentFailed{
		From:     from,
		PlanID:   planCode,
		Required: required,
		Reason:   reason,
	})
}

// transfer moves funds through the bank, translating bank failures
// into engine sentinels.
func (e *Engine) transfer(ctx context.Context, from, to string, amount types.Amount) error {
	if err := e.bank.Transfer(ctx, from, to, amount); err != nil {
		return mapBankError(err)
	}
	return nil
}

// refundIfCovered transfers from an admin to a user only when the
// admin's balance covers the amount and the user can receive it. The
// caller decides whether a failure is fatal.
func (e *Engine) refundIfCovered(ctx context.Context, adminID, userID string, amount types.Amount) error {
	if !e.bank.IsRegistered(ctx, userID, amount.Token) {
		return ErrCoinNotRegistered
	}
	bal, err := e.bank.Balance(ctx, adminID, amount.Token)
	if err != nil {
		return mapBankError(err)
	}
	if bal.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return e.transfer(ctx, adminID, userID, amount)
}

func mapBankError(err error) error {
	switch {
	case errors.Is(err, bank.ErrInsufficientFunds):
		return ErrInsufficientBalance
	case errors.Is(err, bank.ErrAccountNotRegistered):
		return ErrCoinNotRegistered
	default:
		return err
	}
}
