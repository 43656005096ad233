package types

import (
	"encoding/json"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		units   int64
		token   TokenType
		display string
	}{
		{"APT", APT(150000000), 150000000, "apt", "1.50000000 APT"},
		{"USDC", USDC(2500000), 2500000, "usdc", "2.500000 USDC"},
		{"USDT", USDT(1000000), 1000000, "usdt", "1.000000 USDT"},
		{"Zero APT", Zero(TokenAPT), 0, "apt", "0.00000000 APT"},
		{"Zero USDC", Zero(TokenUSDC), 0, "usdc", "0.000000 USDC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.amount.Units != tt.units {
				t.Errorf("Units: got %d, want %d", tt.amount.Units, tt.units)
			}
			if tt.amount.Token != tt.token {
				t.Errorf("Token: got %s, want %s", tt.amount.Token, tt.token)
			}
			if tt.amount.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.amount.String(), tt.display)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return APT(100).Add(APT(200)) }, APT(300)},
		{"Subtract", func() Amount { return APT(500).Subtract(APT(200)) }, APT(300)},
		{"Percent", func() Amount { return APT(100).Percent(10) }, APT(10)},
		{"Percent floors", func() Amount { return APT(99).Percent(10) }, APT(9)},
		{"PercentOff", func() Amount { return APT(100).PercentOff(30) }, APT(70)},
		{"PercentOff floors", func() Amount { return APT(99).PercentOff(30) }, APT(69)},
		{"PercentOff full", func() Amount { return APT(100).PercentOff(100) }, APT(0)},
		{"Prorate", func() Amount { return APT(100).Prorate(15, 30) }, APT(50)},
		{"Prorate floors", func() Amount { return APT(100).Prorate(1, 3) }, APT(33)},
		{"Prorate zero denominator", func() Amount { return APT(100).Prorate(10, 0) }, APT(0)},
		{"Max", func() Amount { return APT(100).Max(APT(200)) }, APT(200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op()
			if !got.Equal(tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPercentOffNeverNegative(t *testing.T) {
	for _, price := range []int64{0, 1, 7, 99, 100, 12345, 1 << 40} {
		for percent := 0; percent <= 100; percent++ {
			got := APT(price).PercentOff(percent)
			if got.Units < 0 {
				t.Fatalf("PercentOff(%d) of %d went negative: %d", percent, price, got.Units)
			}
			want := price * int64(100-percent) / 100
			if got.Units != want {
				t.Fatalf("PercentOff(%d) of %d = %d, want %d", percent, price, got.Units, want)
			}
		}
	}
}

func TestAmountComparison(t *testing.T) {
	if !APT(100).LessThan(APT(200)) {
		t.Error("expected 100 < 200")
	}
	if !APT(200).GreaterThan(APT(100)) {
		t.Error("expected 200 > 100")
	}
	if !APT(0).IsZero() {
		t.Error("expected zero")
	}
	if !APT(1).IsPositive() {
		t.Error("expected positive")
	}
	if APT(100).Equal(USDC(100)) {
		t.Error("amounts in different tokens must not be equal")
	}
}

func TestTokenMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on token mismatch")
		}
	}()
	APT(100).Add(USDC(100))
}

func TestTokenScales(t *testing.T) {
	tests := []struct {
		token    TokenType
		decimals int
		scale    int64
	}{
		{TokenAPT, 8, 100000000},
		{TokenUSDC, 6, 1000000},
		{TokenUSDT, 6, 1000000},
	}

	for _, tt := range tests {
		t.Run(string(tt.token), func(t *testing.T) {
			if got := tt.token.Decimals(); got != tt.decimals {
				t.Errorf("Decimals: got %d, want %d", got, tt.decimals)
			}
			if got := tt.token.UnitScale(); got != tt.scale {
				t.Errorf("UnitScale: got %d, want %d", got, tt.scale)
			}
		})
	}
}

func TestAmountJSON(t *testing.T) {
	data, err := json.Marshal(APT(150000000))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		Units   int64  `json:"units"`
		Token   string `json:"token"`
		Display string `json:"display"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Units != 150000000 || decoded.Token != "apt" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
	if decoded.Display != "1.50000000 APT" {
		t.Errorf("display: got %q", decoded.Display)
	}
}

func TestSum(t *testing.T) {
	got := Sum(USDC(100), USDC(200), USDC(300))
	if !got.Equal(USDC(600)) {
		t.Errorf("Sum: got %v, want %v", got, USDC(600))
	}
}
