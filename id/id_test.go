package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/subledger/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"PlanID", id.NewPlanID, "plan_"},
		{"SubscriptionID", id.NewSubscriptionID, "sub_"},
		{"CodeID", id.NewCodeID, "code_"},
		{"ReferralID", id.NewReferralID, "refl_"},
		{"GroupID", id.NewGroupID, "grp_"},
		{"InstallmentID", id.NewInstallmentID, "inst_"},
		{"ReceiptID", id.NewReceiptID, "rcpt_"},
		{"EscrowID", id.NewEscrowID, "esc_"},
		{"PriceFeedID", id.NewPriceFeedID, "feed_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixPlan)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixPlan {
		t.Errorf("expected prefix %q, got %q", id.PrefixPlan, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"PlanID", id.NewPlanID, id.ParsePlanID},
		{"SubscriptionID", id.NewSubscriptionID, id.ParseSubscriptionID},
		{"CodeID", id.NewCodeID, id.ParseCodeID},
		{"ReferralID", id.NewReferralID, id.ParseReferralID},
		{"GroupID", id.NewGroupID, id.ParseGroupID},
		{"InstallmentID", id.NewInstallmentID, id.ParseInstallmentID},
		{"ReceiptID", id.NewReceiptID, id.ParseReceiptID},
		{"EscrowID", id.NewEscrowID, id.ParseEscrowID},
		{"PriceFeedID", id.NewPriceFeedID, id.ParsePriceFeedID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParsePlanID rejects sub_", id.NewSubscriptionID().String(), id.ParsePlanID},
		{"ParseSubscriptionID rejects code_", id.NewCodeID().String(), id.ParseSubscriptionID},
		{"ParseCodeID rejects refl_", id.NewReferralID().String(), id.ParseCodeID},
		{"ParseReferralID rejects grp_", id.NewGroupID().String(), id.ParseReferralID},
		{"ParseGroupID rejects inst_", id.NewInstallmentID().String(), id.ParseGroupID},
		{"ParseInstallmentID rejects rcpt_", id.NewReceiptID().String(), id.ParseInstallmentID},
		{"ParseReceiptID rejects esc_", id.NewEscrowID().String(), id.ParseReceiptID},
		{"ParseEscrowID rejects feed_", id.NewPriceFeedID().String(), id.ParseEscrowID},
		{"ParsePriceFeedID rejects plan_", id.NewPlanID().String(), id.ParsePriceFeedID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parseFn(tt.input)
			if err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"garbage", "not-a-typeid"},
		{"bad suffix", "plan_!!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("expected parse error for %q", tt.input)
			}
		})
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	original := id.NewReceiptID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", decoded.String(), original.String())
	}
}

func TestNilHandling(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil should report IsNil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil.String() = %q, want empty", id.Nil.String())
	}

	v, err := id.Nil.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != nil {
		t.Errorf("Nil.Value() = %v, want nil", v)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(nil); err != nil {
		t.Fatalf("unmarshal of empty failed: %v", err)
	}
	if !decoded.IsNil() {
		t.Error("unmarshal of empty should yield Nil")
	}
}

func TestScan(t *testing.T) {
	original := id.NewEscrowID()

	var fromString id.ID
	if err := fromString.Scan(original.String()); err != nil {
		t.Fatalf("scan string failed: %v", err)
	}
	if fromString.String() != original.String() {
		t.Errorf("scan string mismatch: %q != %q", fromString.String(), original.String())
	}

	var fromBytes id.ID
	if err := fromBytes.Scan([]byte(original.String())); err != nil {
		t.Fatalf("scan bytes failed: %v", err)
	}
	if fromBytes.String() != original.String() {
		t.Errorf("scan bytes mismatch: %q != %q", fromBytes.String(), original.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("scan nil should yield Nil")
	}

	var fromInt id.ID
	if err := fromInt.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
