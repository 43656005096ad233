// Package id defines TypeID-based identity types for all subledger records.
//
// Domain records are keyed by account identity (a user address, a plan
// admin address), but every stored record also carries a TypeID so that
// storage drivers, receipts, and audit trails have a globally unique,
// K-sortable (UUIDv7-based), URL-safe handle in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record type encoded in a TypeID.
type Prefix string

// Prefix constants for all subledger record types.
const (
	PrefixPlan        Prefix = "plan" // Subscription plan
	PrefixSub         Prefix = "sub"  // User subscription
	PrefixCode        Prefix = "code" // Discount code
	PrefixHistory     Prefix = "hist" // User discount history
	PrefixReferral    Prefix = "refl" // Referral stats record
	PrefixGroup       Prefix = "grp"  // Group subscription
	PrefixInstallment Prefix = "inst" // Installment plan
	PrefixReceipt     Prefix = "rcpt" // Payment receipt
	PrefixEscrow      Prefix = "esc"  // Escrow record
	PrefixPriceFeed   Prefix = "feed" // Price feed snapshot
)

// ID is the primary identifier type for all subledger records.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "plan_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases per record type
// ──────────────────────────────────────────────────

// PlanID is a type-safe identifier for plans (prefix: "plan").
type PlanID = ID

// SubscriptionID is a type-safe identifier for subscriptions (prefix: "sub").
type SubscriptionID = ID

// CodeID is a type-safe identifier for discount codes (prefix: "code").
type CodeID = ID

// HistoryID is a type-safe identifier for user discount histories (prefix: "hist").
type HistoryID = ID

// ReferralID is a type-safe identifier for referral stats (prefix: "refl").
type ReferralID = ID

// GroupID is a type-safe identifier for group subscriptions (prefix: "grp").
type GroupID = ID

// InstallmentID is a type-safe identifier for installment plans (prefix: "inst").
type InstallmentID = ID

// ReceiptID is a type-safe identifier for payment receipts (prefix: "rcpt").
type ReceiptID = ID

// EscrowID is a type-safe identifier for escrow records (prefix: "esc").
type EscrowID = ID

// PriceFeedID is a type-safe identifier for price feed snapshots (prefix: "feed").
type PriceFeedID = ID

// AnyID is a type alias that accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewPlanID generates a new unique plan ID.
func NewPlanID() ID { return New(PrefixPlan) }

// NewSubscriptionID generates a new unique subscription ID.
func NewSubscriptionID() ID { return New(PrefixSub) }

// NewCodeID generates a new unique discount code ID.
func NewCodeID() ID { return New(PrefixCode) }

// NewHistoryID generates a new unique discount history ID.
func NewHistoryID() ID { return New(PrefixHistory) }

// NewReferralID generates a new unique referral stats ID.
func NewReferralID() ID { return New(PrefixReferral) }

// NewGroupID generates a new unique group subscription ID.
func NewGroupID() ID { return New(PrefixGroup) }

// NewInstallmentID generates a new unique installment plan ID.
func NewInstallmentID() ID { return New(PrefixInstallment) }

// NewReceiptID generates a new unique receipt ID.
func NewReceiptID() ID { return New(PrefixReceipt) }

// NewEscrowID generates a new unique escrow ID.
func NewEscrowID() ID { return New(PrefixEscrow) }

// NewPriceFeedID generates a new unique price feed snapshot ID.
func NewPriceFeedID() ID { return New(PrefixPriceFeed) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParsePlanID parses a string and validates the "plan" prefix.
func ParsePlanID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPlan) }

// ParseSubscriptionID parses a string and validates the "sub" prefix.
func ParseSubscriptionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixSub) }

// ParseCodeID parses a string and validates the "code" prefix.
func ParseCodeID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCode) }

// ParseHistoryID parses a string and validates the "hist" prefix.
func ParseHistoryID(s string) (ID, error) { return ParseWithPrefix(s, PrefixHistory) }

// ParseReferralID parses a string and validates the "refl" prefix.
func ParseReferralID(s string) (ID, error) { return ParseWithPrefix(s, PrefixReferral) }

// ParseGroupID parses a string and validates the "grp" prefix.
func ParseGroupID(s string) (ID, error) { return ParseWithPrefix(s, PrefixGroup) }

// ParseInstallmentID parses a string and validates the "inst" prefix.
func ParseInstallmentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixInstallment) }

// ParseReceiptID parses a string and validates the "rcpt" prefix.
func ParseReceiptID(s string) (ID, error) { return ParseWithPrefix(s, PrefixReceipt) }

// ParseEscrowID parses a string and validates the "esc" prefix.
func ParseEscrowID(s string) (ID, error) { return ParseWithPrefix(s, PrefixEscrow) }

// ParsePriceFeedID parses a string and validates the "feed" prefix.
func ParsePriceFeedID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPriceFeed) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
