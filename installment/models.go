package installment

import (
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/types"
)

// Frequency is the spacing between installment payments, in months of
// the simplified 30-day billing calendar.
type Frequency int

const (
	Monthly   Frequency = 1
	Quarterly Frequency = 3
	Annually  Frequency = 12
)

// Valid reports whether the frequency is one of the supported values.
func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Quarterly, Annually:
		return true
	}
	return false
}

// Months returns the frequency as a month count.
func (f Frequency) Months() int { return int(f) }

// MinInstallments and MaxInstallments bound the number of payments a
// plan may be split into.
const (
	MinInstallments = 1
	MaxInstallments = 24
)

// SecondsPerMonth is one month of the 30-day billing calendar.
const SecondsPerMonth int64 = 30 * 86400

// Plan is a payer's installment schedule. The total is split into
// equal payments of floor(total/count); integer division remainder is
// never collected. A payer can hold several plans, distinguished by Seq.
type Plan struct {
	types.Entity
	ID                id.InstallmentID `json:"id"`
	PayerID           string           `json:"payer_id"`
	Seq               int64            `json:"seq"`
	Total             types.Amount     `json:"total"`
	NumInstallments   int              `json:"num_installments"`
	InstallmentAmount types.Amount     `json:"installment_amount"`
	Frequency         Frequency        `json:"frequency"`
	PaymentsMade      int              `json:"payments_made"`
	NextPaymentDue    int64            `json:"next_payment_due"` // unix seconds
	Completed         bool             `json:"completed"`
}

// RemainingPayments returns how many installments are still owed.
func (p *Plan) RemainingPayments() int {
	return p.NumInstallments - p.PaymentsMade
}
