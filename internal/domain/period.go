package domain

import (
	"fmt"
	"strings"
	"time"
)

// Period selects the window analytics are computed over
type Period string

const (
	Period30Days     Period = "30d"
	Period3Months    Period = "3m"
	PeriodYearToDate Period = "ytd"
	PeriodAll        Period = "all"
)

// ParsePeriod parses a period name, accepting a few aliases
func ParsePeriod(p string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "30d", "30days", "month":
		return Period30Days, nil
	case "3m", "3months", "quarter":
		return Period3Months, nil
	case "ytd", "year-to-date":
		return PeriodYearToDate, nil
	case "all", "":
		return PeriodAll, nil
	default:
		return PeriodAll, fmt.Errorf("unknown period %s", p)
	}
}

// Start returns the first calendar day included in the period ending at now
// The second return value is false for PeriodAll, which has no lower bound
func (p Period) Start(now time.Time) (time.Time, bool) {
	today := CalendarDay(now)
	switch p {
	case Period30Days:
		return today.AddDate(0, 0, -30), true
	case Period3Months:
		return subMonths(today, 3), true
	case PeriodYearToDate:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

// Contains reports whether day falls inside [Start, now], bounds included
func (p Period) Contains(day, now time.Time) bool {
	start, bounded := p.Start(now)
	if !bounded {
		return true
	}
	d := CalendarDay(day)
	return !d.Before(start) && !d.After(CalendarDay(now))
}

// TimeRange selects the trailing window of net-worth history
type TimeRange string

const (
	TimeRangeOneMonth  TimeRange = "1M"
	TimeRangeSixMonths TimeRange = "6M"
	TimeRangeOneYear   TimeRange = "1Y"
	TimeRangeAll       TimeRange = "ALL"
)

// ParseTimeRange parses a history range name
func ParseTimeRange(r string) (TimeRange, error) {
	switch strings.ToUpper(strings.TrimSpace(r)) {
	case "1M":
		return TimeRangeOneMonth, nil
	case "6M":
		return TimeRangeSixMonths, nil
	case "1Y":
		return TimeRangeOneYear, nil
	case "ALL", "":
		return TimeRangeAll, nil
	default:
		return TimeRangeAll, fmt.Errorf("unknown time range %s", r)
	}
}

// Cutoff returns the instant history must be strictly after to be included
func (r TimeRange) Cutoff(now time.Time) time.Time {
	switch r {
	case TimeRangeOneMonth:
		return subMonths(now, 1)
	case TimeRangeSixMonths:
		return subMonths(now, 6)
	case TimeRangeOneYear:
		return subMonths(now, 12)
	default:
		return time.Unix(0, 0).UTC()
	}
}

// subMonths steps back n calendar months, keeping the clock time
// A day past the end of the target month is clamped to its last day (May 31 - 3 months = Feb 28).
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hour, minute, sec := t.Clock()

	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hour, minute, sec, t.Nanosecond(), t.Location())
}
