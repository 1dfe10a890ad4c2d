package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// MaxSpanDays caps the calendar days a single request may cover.
const MaxSpanDays = 366

// CountDays returns the inclusive calendar-day count of [start, end], less
// half a day for each half-day boundary. Zero means the range is empty.
func CountDays(start, end time.Time, startHalf, endHalf bool) decimal.Decimal {
	span := SpanDays(start, end)
	if span <= 0 {
		return decimal.Zero
	}

	if span == 1 {
		// Both halves of one day would leave nothing.
		if startHalf && endHalf {
			return decimal.Zero
		}
		if startHalf || endHalf {
			return half
		}
		return decimal.NewFromInt(1)
	}

	days := decimal.NewFromInt(span)
	if startHalf {
		days = days.Sub(half)
	}
	if endHalf {
		days = days.Sub(half)
	}
	return days
}

// SpanDays is the inclusive count of calendar dates from start to end, or
// zero when end is earlier. Only the dates matter, not clock or zone.
func SpanDays(start, end time.Time) int64 {
	n := dayNumber(end) - dayNumber(start) + 1
	if n < 0 {
		return 0
	}
	return n
}

func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
