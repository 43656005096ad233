package discount

// The engine uses a simplified civil calendar for seasonal pricing: a
// fixed 365-day year with no leap days. Month boundaries are computed
// from the cumulative day-of-year, so a timestamp maps to exactly one
// month regardless of the real-world calendar.

// SecondsPerDay is the length of a billing day.
const SecondsPerDay int64 = 86400

const daysPerYear int64 = 365

var monthLengths = [12]int64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthOf maps a unix timestamp (seconds) to a month number in 1..12
// under the simplified 365-day calendar.
func MonthOf(ts int64) int {
	dayOfYear := (ts / SecondsPerDay) % daysPerYear
	if dayOfYear < 0 {
		dayOfYear += daysPerYear
	}
	for m, length := range monthLengths {
		if dayOfYear < length {
			return m + 1
		}
		dayOfYear -= length
	}
	return 12
}

// SeasonalPercentAt returns the seasonal discount percent in effect at
// the given time: 30 during March, August, and October, otherwise 0.
func SeasonalPercentAt(ts int64) int {
	switch MonthOf(ts) {
	case 3, 8, 10:
		return SeasonalPercent
	default:
		return 0
	}
}
