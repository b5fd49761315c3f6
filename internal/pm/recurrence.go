package pm

import (
	"time"

	"github.com/ukydev/facility-maintenance/internal/models"
)

// DateOnly normalizes a time to midnight UTC. Scheduled dates and all
// day-based comparisons in the engine use this normalization.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Advance steps a date forward by one recurrence interval. Month-based steps
// use calendar month arithmetic and clamp to the last day of the target month
// (Jan 31 + 1 month = Feb 29 in a leap year), so a valid date always comes out.
func Advance(date time.Time, intervalType models.IntervalType, intervalValue int) (time.Time, error) {
	if intervalValue < 1 {
		return time.Time{}, &ValidationError{Field: "interval_value", Reason: "must be >= 1"}
	}
	switch intervalType {
	case models.IntervalDaily:
		return date.AddDate(0, 0, intervalValue), nil
	case models.IntervalWeekly:
		return date.AddDate(0, 0, intervalValue*7), nil
	case models.IntervalMonthly:
		return addMonthsClamped(date, intervalValue), nil
	case models.IntervalQuarterly:
		return addMonthsClamped(date, intervalValue*3), nil
	case models.IntervalYearly:
		return addMonthsClamped(date, intervalValue*12), nil
	default:
		return time.Time{}, &ValidationError{Field: "interval_type", Reason: "unknown recurrence type"}
	}
}

// addMonthsClamped adds calendar months, clamping the day to the length of
// the target month instead of letting AddDate overflow into the next one.
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
