package discount

import "testing"

// dayStart returns the unix timestamp for the start of the given
// zero-based day-of-year in the first simplified year.
func dayStart(day int64) int64 {
	return day * SecondsPerDay
}

func TestMonthOf(t *testing.T) {
	tests := []struct {
		name  string
		ts    int64
		month int
	}{
		{"epoch", 0, 1},
		{"end of January", dayStart(30), 1},
		{"start of February", dayStart(31), 2},
		{"end of February", dayStart(58), 2},
		{"start of March", dayStart(59), 3},
		{"end of March", dayStart(89), 3},
		{"start of April", dayStart(90), 4},
		{"start of August", dayStart(212), 8},
		{"end of August", dayStart(242), 8},
		{"start of September", dayStart(243), 9},
		{"start of October", dayStart(273), 10},
		{"end of October", dayStart(303), 10},
		{"start of December", dayStart(334), 12},
		{"last day of year", dayStart(364), 12},
		{"second year wraps", dayStart(365), 1},
		{"mid-second-year March", 365*SecondsPerDay + dayStart(60), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthOf(tt.ts); got != tt.month {
				t.Errorf("MonthOf(%d): got %d, want %d", tt.ts, got, tt.month)
			}
		})
	}
}

func TestMonthLengthsSumToYear(t *testing.T) {
	var total int64
	for _, l := range monthLengths {
		total += l
	}
	if total != daysPerYear {
		t.Fatalf("month lengths sum to %d, want %d", total, daysPerYear)
	}
}

func TestSeasonalPercentAt(t *testing.T) {
	tests := []struct {
		name    string
		ts      int64
		percent int
	}{
		{"January", 0, 0},
		{"March", dayStart(70), SeasonalPercent},
		{"April", dayStart(95), 0},
		{"August", dayStart(220), SeasonalPercent},
		{"October", dayStart(280), SeasonalPercent},
		{"December", dayStart(350), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeasonalPercentAt(tt.ts); got != tt.percent {
				t.Errorf("SeasonalPercentAt(%d): got %d, want %d", tt.ts, got, tt.percent)
			}
		})
	}
}

func TestCodeRedeemable(t *testing.T) {
	now := int64(1000)
	tests := []struct {
		name string
		code Code
		want bool
	}{
		{"valid unlimited", Code{ExpiresAt: 2000}, true},
		{"expired", Code{ExpiresAt: 500}, false},
		{"expires exactly now", Code{ExpiresAt: 1000}, false},
		{"under max uses", Code{ExpiresAt: 2000, MaxUses: 5, UsageCount: 4}, true},
		{"at max uses", Code{ExpiresAt: 2000, MaxUses: 5, UsageCount: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Redeemable(now); got != tt.want {
				t.Errorf("Redeemable: got %v, want %v", got, tt.want)
			}
		})
	}
}
