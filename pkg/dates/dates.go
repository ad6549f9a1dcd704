// Package dates holds the calendar-range helpers behind the stats
// commands. All math is done in UTC; a "day" is the UTC calendar day.
package dates

import (
	"time"
)

const DayLayout = "2006-01-02"

const MonthLayout = "2006-01"

func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func DayRange(now time.Time) (time.Time, time.Time) {
	return StartOfDay(now), EndOfDay(now)
}

// WeekRange spans Monday through the current moment's day end.
func WeekRange(now time.Time) (time.Time, time.Time) {
	u := now.UTC()
	diff := (int(u.Weekday()) + 6) % 7
	return StartOfDay(u.AddDate(0, 0, -diff)), EndOfDay(u)
}

func MonthRange(now time.Time) (time.Time, time.Time) {
	u := now.UTC()
	from := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// MonthRangeFor parses a "YYYY-MM" label into its full month range.
func MonthRangeFor(month string) (time.Time, time.Time, error) {
	first, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first, first.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
}

// RangeBetween parses two "YYYY-MM-DD" labels into an inclusive range.
func RangeBetween(from, to string) (time.Time, time.Time, error) {
	f, err := time.Parse(DayLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := time.Parse(DayLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return StartOfDay(f), EndOfDay(t), nil
}

func DayLabel(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

func RangeLabel(from, to time.Time) string {
	fromLabel := DayLabel(from)
	toLabel := DayLabel(to)
	if fromLabel == toLabel {
		return fromLabel
	}
	return fromLabel + " - " + toLabel
}
