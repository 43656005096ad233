package subledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrAlreadyInitialized = errors.New("subledger: already initialized")
	ErrInvalidStage       = errors.New("subledger: operation invalid for current stage")

	ErrNotFound      = errors.New("subledger: not found")
	ErrAlreadyExists = errors.New("subledger: already exists")
	ErrInvalidInput  = errors.New("subledger: invalid input")
	ErrUnauthorized  = errors.New("subledger: unauthorized")
	ErrNotAdmin      = errors.New("subledger: caller is not the admin")

	// Plan errors
	ErrPlanExists   = errors.New("subledger: plan already exists")
	ErrPlanNotFound = errors.New("subledger: plan not found")

	// Subscription errors
	ErrAlreadySubscribed    = errors.New("subledger: already subscribed")
	ErrNotSubscribed        = errors.New("subledger: not subscribed")
	ErrSubscriptionNotFound = errors.New("subledger: subscription not found")
	ErrPlanMismatch         = errors.New("subledger: subscription plan no longer in catalog")

	// Payment errors
	ErrInsufficientBalance = errors.New("subledger: insufficient balance")
	ErrCoinNotRegistered   = errors.New("subledger: account not registered for token")
	ErrInvalidAmount       = errors.New("subledger: invalid amount")

	// Discount errors
	ErrDiscountCodeExists   = errors.New("subledger: discount code already exists")
	ErrDiscountCodeNotFound = errors.New("subledger: discount code not found")
	ErrInvalidPercent       = errors.New("subledger: discount percent out of range")

	// Group errors
	ErrGroupExists   = errors.New("subledger: group already exists")
	ErrGroupNotFound = errors.New("subledger: group not found")
	ErrGroupFull     = errors.New("subledger: group is full")
	ErrNotMember     = errors.New("subledger: not a group member")

	// Installment errors
	ErrInstallmentNotFound        = errors.New("subledger: installment plan not found")
	ErrInstallmentAlreadyComplete = errors.New("subledger: installment plan already complete")
	ErrInvalidInstallmentCount    = errors.New("subledger: installment count out of range")
	ErrInvalidFrequency           = errors.New("subledger: invalid installment frequency")

	// Escrow errors
	ErrEscrowNotFound         = errors.New("subledger: escrow not found")
	ErrDisputeAlreadyResolved = errors.New("subledger: dispute already resolved")

	// Price feed errors
	ErrInvalidPriceFeed  = errors.New("subledger: invalid price feed")
	ErrPriceFeedNotFound = errors.New("subledger: price feed not found")
	ErrUnsupportedToken  = errors.New("subledger: unsupported token type")

	// Referral errors
	ErrSelfReferral = errors.New("subledger: self referral")

	// Store errors
	ErrStoreNotReady     = errors.New("subledger: store not ready")
	ErrStoreClosed       = errors.New("subledger: store is closed")
	ErrTransactionFailed = errors.New("subledger: transaction failed")
	ErrMigrationFailed   = errors.New("subledger: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("subledger: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound) ||
		errors.Is(err, ErrDiscountCodeNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrInstallmentNotFound) ||
		errors.Is(err, ErrEscrowNotFound) ||
		errors.Is(err, ErrPriceFeedNotFound)
}

// IsPaymentError returns true if the error is a funds or registration failure.
func IsPaymentError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrCoinNotRegistered)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
