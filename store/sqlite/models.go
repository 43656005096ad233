package sqlite

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/subledger/discount"
	"github.com/xraph/subledger/group"
	"github.com/xraph/subledger/id"
	"github.com/xraph/subledger/installment"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/plan"
	"github.com/xraph/subledger/referral"
	"github.com/xraph/subledger/subscription"
	"github.com/xraph/subledger/types"
)

// String slice columns are stored as JSON text; SQLite has no native
// array type.

// ==================== Plan models ====================

type planModel struct {
	grove.BaseModel `grove:"table:subledger_plans"`

	ID         string    `grove:"id,pk"`
	AdminID    string    `grove:"admin_id"`
	Code       string    `grove:"code"`
	Duration   int64     `grove:"duration"`
	PriceUnits int64     `grove:"price_units"`
	PriceToken string    `grove:"price_token"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toPlanModel(p *plan.Plan) *planModel {
	return &planModel{
		ID:         p.ID.String(),
		AdminID:    p.AdminID,
		Code:       p.Code,
		Duration:   p.Duration,
		PriceUnits: p.Price.Units,
		PriceToken: string(p.Price.Token),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func fromPlanModel(m *planModel) (*plan.Plan, error) {
	planID, err := id.ParsePlanID(m.ID)
	if err != nil {
		return nil, err
	}

	return &plan.Plan{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       planID,
		AdminID:  m.AdminID,
		Code:     m.Code,
		Duration: m.Duration,
		Price:    types.Amount{Units: m.PriceUnits, Token: types.TokenType(m.PriceToken)},
	}, nil
}

// ==================== Discount code models ====================

type discountCodeModel struct {
	grove.BaseModel `grove:"table:subledger_discount_codes"`

	ID         string    `grove:"id,pk"`
	AdminID    string    `grove:"admin_id"`
	Code       string    `grove:"code"`
	Percent    int       `grove:"percent"`
	ExpiresAt  int64     `grove:"expires_at"`
	UsageCount int64     `grove:"usage_count"`
	MaxUses    int64     `grove:"max_uses"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toDiscountCodeModel(c *discount.Code) *discountCodeModel {
	return &discountCodeModel{
		ID:         c.ID.String(),
		AdminID:    c.AdminID,
		Code:       c.Code,
		Percent:    c.Percent,
		ExpiresAt:  c.ExpiresAt,
		UsageCount: c.UsageCount,
		MaxUses:    c.MaxUses,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func fromDiscountCodeModel(m *discountCodeModel) (*discount.Code, error) {
	codeID, err := id.ParseCodeID(m.ID)
	if err != nil {
		return nil, err
	}

	return &discount.Code{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         codeID,
		AdminID:    m.AdminID,
		Code:       m.Code,
		Percent:    m.Percent,
		ExpiresAt:  m.ExpiresAt,
		UsageCount: m.UsageCount,
		MaxUses:    m.MaxUses,
	}, nil
}

// ==================== Discount history models ====================

type discountHistoryModel struct {
	grove.BaseModel `grove:"table:subledger_discount_histories"`

	UserID            string    `grove:"user_id,pk"`
	ID                string    `grove:"id"`
	UsedCodes         string    `grove:"used_codes"`
	SubscriptionCount int64     `grove:"subscription_count"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
}

func toDiscountHistoryModel(h *discount.History) *discountHistoryModel {
	return &discountHistoryModel{
		UserID:            h.UserID,
		ID:                h.ID.String(),
		UsedCodes:         marshalStrings(h.UsedCodes),
		SubscriptionCount: h.SubscriptionCount,
		CreatedAt:         h.CreatedAt,
		UpdatedAt:         h.UpdatedAt,
	}
}

func fromDiscountHistoryModel(m *discountHistoryModel) (*discount.History, error) {
	histID, err := id.ParseHistoryID(m.ID)
	if err != nil {
		return nil, err
	}

	return &discount.History{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                histID,
		UserID:            m.UserID,
		UsedCodes:         unmarshalStrings(m.UsedCodes),
		SubscriptionCount: m.SubscriptionCount,
	}, nil
}

// ==================== Subscription models ====================

type subscriptionModel struct {
	grove.BaseModel `grove:"table:subledger_subscriptions"`

	UserID        string    `grove:"user_id,pk"`
	ID            string    `grove:"id"`
	PlanAdmin     string    `grove:"plan_admin"`
	PlanCode      string    `grove:"plan_code"`
	StartedAt     int64     `grove:"started_at"`
	ExpiresAt     int64     `grove:"expires_at"`
	InGracePeriod bool      `grove:"in_grace_period"`
	GraceEndsAt   int64     `grove:"grace_ends_at"`
	PaymentUnits  int64     `grove:"payment_units"`
	PaymentToken  string    `grove:"payment_token"`
	AutoRenew     bool      `grove:"auto_renew"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

func toSubscriptionModel(s *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		UserID:        s.UserID,
		ID:            s.ID.String(),
		PlanAdmin:     s.PlanAdmin,
		PlanCode:      s.PlanCode,
		StartedAt:     s.StartedAt,
		ExpiresAt:     s.ExpiresAt,
		InGracePeriod: s.InGracePeriod,
		GraceEndsAt:   s.GraceEndsAt,
		PaymentUnits:  s.LastPayment.Units,
		PaymentToken:  string(s.LastPayment.Token),
		AutoRenew:     s.AutoRenew,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func fromSubscriptionModel(m *subscriptionModel) (*subscription.Subscription, error) {
	subID, err := id.ParseSubscriptionID(m.ID)
	if err != nil {
		return nil, err
	}

	return &subscription.Subscription{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            subID,
		UserID:        m.UserID,
		PlanAdmin:     m.PlanAdmin,
		PlanCode:      m.PlanCode,
		StartedAt:     m.StartedAt,
		ExpiresAt:     m.ExpiresAt,
		InGracePeriod: m.InGracePeriod,
		GraceEndsAt:   m.GraceEndsAt,
		LastPayment:   types.Amount{Units: m.PaymentUnits, Token: types.TokenType(m.PaymentToken)},
		AutoRenew:     m.AutoRenew,
	}, nil
}

// ==================== Referral stats models ====================

type referralStatsModel struct {
	grove.BaseModel `grove:"table:subledger_referral_stats"`

	UserID             string    `grove:"user_id,pk"`
	ID                 string    `grove:"id"`
	Referrer           string    `grove:"referrer"`
	ReferredUsers      string    `grove:"referred_users"`
	TotalRewardsEarned int64     `grove:"total_rewards_earned"`
	ActiveReferrals    int64     `grove:"active_referrals"`
	CreatedAt          time.Time `grove:"created_at"`
	UpdatedAt          time.Time `grove:"updated_at"`
}

func toReferralStatsModel(s *referral.Stats) *referralStatsModel {
	return &referralStatsModel{
		UserID:             s.UserID,
		ID:                 s.ID.String(),
		Referrer:           s.Referrer,
		ReferredUsers:      marshalStrings(s.ReferredUsers),
		TotalRewardsEarned: s.TotalRewardsEarned,
		ActiveReferrals:    s.ActiveReferrals,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func fromReferralStatsModel(m *referralStatsModel) (*referral.Stats, error) {
	statsID, err := id.ParseReferralID(m.ID)
	if err != nil {
		return nil, err
	}

	return &referral.Stats{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                 statsID,
		UserID:             m.UserID,
		Referrer:           m.Referrer,
		ReferredUsers:      unmarshalStrings(m.ReferredUsers),
		TotalRewardsEarned: m.TotalRewardsEarned,
		ActiveReferrals:    m.ActiveReferrals,
	}, nil
}

// ==================== Group models ====================

type groupModel struct {
	grove.BaseModel `grove:"table:subledger_groups"`

	AdminID    string    `grove:"admin_id,pk"`
	ID         string    `grove:"id"`
	PlanCode   string    `grove:"plan_code"`
	ExpiresAt  int64     `grove:"expires_at"`
	Members    string    `grove:"members"`
	MaxMembers int       `grove:"max_members"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toGroupModel(g *group.Group) *groupModel {
	return &groupModel{
		AdminID:    g.AdminID,
		ID:         g.ID.String(),
		PlanCode:   g.PlanCode,
		ExpiresAt:  g.ExpiresAt,
		Members:    marshalStrings(g.Members),
		MaxMembers: g.MaxMembers,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

func fromGroupModel(m *groupModel) (*group.Group, error) {
	groupID, err := id.ParseGroupID(m.ID)
	if err != nil {
		return nil, err
	}

	return &group.Group{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         groupID,
		AdminID:    m.AdminID,
		PlanCode:   m.PlanCode,
		ExpiresAt:  m.ExpiresAt,
		Members:    unmarshalStrings(m.Members),
		MaxMembers: m.MaxMembers,
	}, nil
}

// ==================== Installment plan models ====================

type installmentPlanModel struct {
	grove.BaseModel `grove:"table:subledger_installment_plans"`

	ID               string    `grove:"id,pk"`
	PayerID          string    `grove:"payer_id"`
	Seq              int64     `grove:"seq"`
	TotalUnits       int64     `grove:"total_units"`
	TotalToken       string    `grove:"total_token"`
	NumInstallments  int       `grove:"num_installments"`
	InstallmentUnits int64     `grove:"installment_units"`
	FrequencyMonths  int       `grove:"frequency_months"`
	PaymentsMade     int       `grove:"payments_made"`
	NextPaymentDue   int64     `grove:"next_payment_due"`
	Completed        bool      `grove:"completed"`
	CreatedAt        time.Time `grove:"created_at"`
	UpdatedAt        time.Time `grove:"updated_at"`
}

func toInstallmentPlanModel(p *installment.Plan) *installmentPlanModel {
	return &installmentPlanModel{
		ID:               p.ID.String(),
		PayerID:          p.PayerID,
		Seq:              p.Seq,
		TotalUnits:       p.Total.Units,
		TotalToken:       string(p.Total.Token),
		NumInstallments:  p.NumInstallments,
		InstallmentUnits: p.InstallmentAmount.Units,
		FrequencyMonths:  p.Frequency.Months(),
		PaymentsMade:     p.PaymentsMade,
		NextPaymentDue:   p.NextPaymentDue,
		Completed:        p.Completed,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func fromInstallmentPlanModel(m *installmentPlanModel) (*installment.Plan, error) {
	planID, err := id.ParseInstallmentID(m.ID)
	if err != nil {
		return nil, err
	}

	token := types.TokenType(m.TotalToken)
	return &installment.Plan{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                planID,
		PayerID:           m.PayerID,
		Seq:               m.Seq,
		Total:             types.Amount{Units: m.TotalUnits, Token: token},
		NumInstallments:   m.NumInstallments,
		InstallmentAmount: types.Amount{Units: m.InstallmentUnits, Token: token},
		Frequency:         installment.Frequency(m.FrequencyMonths),
		PaymentsMade:      m.PaymentsMade,
		NextPaymentDue:    m.NextPaymentDue,
		Completed:         m.Completed,
	}, nil
}

// ==================== Receipt models ====================

type receiptModel struct {
	grove.BaseModel `grove:"table:subledger_receipts"`

	ID          string    `grove:"id,pk"`
	Seq         int64     `grove:"seq"`
	Payer       string    `grove:"payer"`
	Payee       string    `grove:"payee"`
	AmountUnits int64     `grove:"amount_units"`
	AmountToken string    `grove:"amount_token"`
	PaymentType string    `grove:"payment_type"`
	ReferenceID string    `grove:"reference_id"`
	PaidAt      int64     `grove:"paid_at"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toReceiptModel(r *payment.Receipt) *receiptModel {
	return &receiptModel{
		ID:          r.ID.String(),
		Seq:         r.Seq,
		Payer:       r.Payer,
		Payee:       r.Payee,
		AmountUnits: r.Amount.Units,
		AmountToken: string(r.Amount.Token),
		PaymentType: string(r.PaymentType),
		ReferenceID: r.ReferenceID,
		PaidAt:      r.Timestamp,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromReceiptModel(m *receiptModel) (*payment.Receipt, error) {
	receiptID, err := id.ParseReceiptID(m.ID)
	if err != nil {
		return nil, err
	}

	return &payment.Receipt{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          receiptID,
		Seq:         m.Seq,
		Payer:       m.Payer,
		Payee:       m.Payee,
		Amount:      types.Amount{Units: m.AmountUnits, Token: types.TokenType(m.AmountToken)},
		PaymentType: payment.Type(m.PaymentType),
		ReferenceID: m.ReferenceID,
		Timestamp:   m.PaidAt,
	}, nil
}

// ==================== Escrow models ====================

type escrowModel struct {
	grove.BaseModel `grove:"table:subledger_escrows"`

	ID              string    `grove:"id,pk"`
	Seq             int64     `grove:"seq"`
	Payer           string    `grove:"payer"`
	Payee           string    `grove:"payee"`
	AmountUnits     int64     `grove:"amount_units"`
	AmountToken     string    `grove:"amount_token"`
	Status          string    `grove:"status"`
	DisputeReason   string    `grove:"dispute_reason"`
	ResolutionNotes string    `grove:"resolution_notes"`
	OpenedAt        int64     `grove:"opened_at"`
	ResolvedAt      int64     `grove:"resolved_at"`
	CreatedAt       time.Time `grove:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"`
}

func toEscrowModel(e *payment.Escrow) *escrowModel {
	return &escrowModel{
		ID:              e.ID.String(),
		Seq:             e.Seq,
		Payer:           e.Payer,
		Payee:           e.Payee,
		AmountUnits:     e.Amount.Units,
		AmountToken:     string(e.Amount.Token),
		Status:          string(e.Status),
		DisputeReason:   e.DisputeReason,
		ResolutionNotes: e.ResolutionNotes,
		OpenedAt:        e.CreatedAtUnix,
		ResolvedAt:      e.ResolvedAtUnix,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func fromEscrowModel(m *escrowModel) (*payment.Escrow, error) {
	escrowID, err := id.ParseEscrowID(m.ID)
	if err != nil {
		return nil, err
	}

	return &payment.Escrow{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:              escrowID,
		Seq:             m.Seq,
		Payer:           m.Payer,
		Payee:           m.Payee,
		Amount:          types.Amount{Units: m.AmountUnits, Token: types.TokenType(m.AmountToken)},
		Status:          payment.EscrowStatus(m.Status),
		DisputeReason:   m.DisputeReason,
		ResolutionNotes: m.ResolutionNotes,
		CreatedAtUnix:   m.OpenedAt,
		ResolvedAtUnix:  m.ResolvedAt,
	}, nil
}

// ==================== Price feed models ====================

type priceFeedModel struct {
	grove.BaseModel `grove:"table:subledger_price_feeds"`

	AdminID     string    `grove:"admin_id,pk"`
	ID          string    `grove:"id"`
	AptToUSD    int64     `grove:"apt_to_usd"`
	UsdcToUSD   int64     `grove:"usdc_to_usd"`
	UsdtToUSD   int64     `grove:"usdt_to_usd"`
	LastUpdated int64     `grove:"last_updated"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toPriceFeedModel(f *payment.PriceFeed) *priceFeedModel {
	return &priceFeedModel{
		AdminID:     f.AdminID,
		ID:          f.ID.String(),
		AptToUSD:    f.AptToUSD,
		UsdcToUSD:   f.UsdcToUSD,
		UsdtToUSD:   f.UsdtToUSD,
		LastUpdated: f.LastUpdated,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func fromPriceFeedModel(m *priceFeedModel) (*payment.PriceFeed, error) {
	feedID, err := id.ParsePriceFeedID(m.ID)
	if err != nil {
		return nil, err
	}

	return &payment.PriceFeed{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          feedID,
		AdminID:     m.AdminID,
		AptToUSD:    m.AptToUSD,
		UsdcToUSD:   m.UsdcToUSD,
		UsdtToUSD:   m.UsdtToUSD,
		LastUpdated: m.LastUpdated,
	}, nil
}

// ==================== Helpers ====================

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalStrings(data string) []string {
	if data == "" {
		return nil
	}
	var values []string
	_ = json.Unmarshal([]byte(data), &values) //nolint:errcheck // best-effort
	return values
}
