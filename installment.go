package subledger

import (
	"context"

	"github.com/xraph/subledger/event"
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/installment"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/types"
)

// CreateInstallmentPlan splits a total into equal scheduled payments.
// Each installment is floor(total/count); any integer remainder is
// never collected. The first payment falls due one frequency period
// from now.
func (e *Engine) CreateInstallmentPlan(ctx context.Context, payerID string, total types.Amount, count int, frequency installment.Frequency) (*installment.Plan, error) {
	if payerID == "" {
		return nil, ErrInvalidInput
	}
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if count < installment.MinInstallments || count > installment.MaxInstallments {
		return nil, ErrInvalidInstallmentCount
	}
	if !frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	unlock := e.locks.acquire(payerID)
	defer unlock()

	now := e.now()
	p := &installment.Plan{
		Entity:            types.NewEntity(),
		ID:                id.NewInstallmentID(),
		PayerID:           payerID,
		Total:             total,
		NumInstallments:   count,
		InstallmentAmount: total.Prorate(1, int64(count)),
		Frequency:         frequency,
		NextPaymentDue:    now + int64(frequency.Months())*installment.SecondsPerMonth,
	}
	if err := e.store.CreateInstallmentPlan(ctx, p); err != nil {
		return nil, err
	}

	e.logger.Info("installment plan created",
		"payer", payerID,
		"seq", p.Seq,
		"total", total.String(),
		"installments", count,
	)

	e.plugins.EmitInstallmentPlanCreated(ctx, &event.InstallmentPlanCreated{
		Payer:             payerID,
		PlanSeq:           p.Seq,
		TotalAmount:       total,
		NumInstallments:   count,
		InstallmentAmount: p.InstallmentAmount,
		FrequencyMonths:   frequency.Months(),
	})
	return p, nil
}

// PayInstallment pays the next installment of the payer's plan to the
// given payee. The plan completes on the final payment; further
// attempts fail. Each payment issues a receipt.
func (e *Engine) PayInstallment(ctx context.Context, payerID string, seq int64, payeeID string) (*installment.Plan, error) {
	if payerID == "" || payeeID == "" {
		return nil, ErrInvalidInput
	}

	unlock := e.locks.acquire(payerID, payeeID)
	defer unlock()

	p, err := e.store.GetInstallmentPlan(ctx, payerID, seq)
	if err != nil {
		return nil, err
	}
	if p.Completed || p.PaymentsMade >= p.NumInstallments {
		return nil, ErrInstallmentAlreadyComplete
	}

	if err := e.transfer(ctx, payerID, payeeID, p.InstallmentAmount); err != nil {
		return nil, err
	}

	p.PaymentsMade++
	if p.PaymentsMade == p.NumInstallments {
		p.Completed = true
	} else {
		p.NextPaymentDue += int64(p.Frequency.Months()) * installment.SecondsPerMonth
	}
	p.Touch()

	if err := e.store.UpdateInstallmentPlan(ctx, p); err != nil {
		return nil, err
	}

	if _, err := e.issueReceipt(ctx, payerID, payeeID, p.InstallmentAmount, payment.TypeInstallment, p.ID.String()); err != nil {
		e.logger.Error("installment receipt failed", "payer", payerID, "seq", seq, "error", err)
	}

	e.logger.Info("installment paid",
		"payer", payerID,
		"seq", seq,
		"payment", p.PaymentsMade,
		"completed", p.Completed,
	)

	e.plugins.EmitInstallmentPaymentMade(ctx, &event.InstallmentPaymentMade{
		Payer:         payerID,
		PlanSeq:       seq,
		PaymentNumber: p.PaymentsMade,
		Amount:        p.InstallmentAmount,
		Completed:     p.Completed,
	})
	return p, nil
}

// InstallmentPlansOf returns every installment plan a payer has set up.
func (e *Engine) InstallmentPlansOf(ctx context.Context, payerID string) ([]*installment.Plan, error) {
	return e.store.ListInstallmentPlans(ctx, payerID)
}
