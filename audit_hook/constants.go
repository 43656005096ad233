package audithook

// Action constants for audit events.
const (
	// Catalog actions
	ActionPlanCreated = "plan.created"

	// Subscription actions
	ActionSubscriptionCreated  = "subscription.created"
	ActionSubscriptionCanceled = "subscription.canceled"
	ActionGracePeriodStarted   = "subscription.grace_started"
	ActionRefundIssued         = "subscription.refund_issued"

	// Payment actions
	ActionPaymentReceived   = "payment.received"
	ActionPaymentFailed     = "payment.failed"
	ActionMultiTokenPayment = "payment.multi_token"
	ActionReceiptIssued     = "payment.receipt_issued"

	// Discount actions
	ActionDiscountApplied      = "discount.seasonal_applied"
	ActionDiscountCodeUsed     = "discount.code_used"
	ActionLoyaltyRewardApplied = "discount.loyalty_applied"

	// Referral actions
	ActionReferralRewardPaid = "referral.reward_paid"

	// Installment actions
	ActionInstallmentPlanCreated = "installment.plan_created"
	ActionInstallmentPaymentMade = "installment.payment_made"

	// Escrow actions
	ActionEscrowCreated  = "escrow.created"
	ActionEscrowResolved = "escrow.resolved"

	// Oracle actions
	ActionPriceFeedUpdated = "price_feed.updated"
)

// Resource constants for audit events.
const (
	ResourcePlan         = "plan"
	ResourceSubscription = "subscription"
	ResourcePayment      = "payment"
	ResourceDiscount     = "discount"
	ResourceReferral     = "referral"
	ResourceInstallment  = "installment"
	ResourceEscrow       = "escrow"
	ResourcePriceFeed    = "price_feed"
)

// Category constants for audit events.
const (
	CategoryBilling      = "billing"
	CategorySubscription = "subscription"
	CategoryPayment      = "payment"
	CategoryDiscount     = "discount"
	CategoryDispute      = "dispute"
	CategoryOracle       = "oracle"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
