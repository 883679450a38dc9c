package analytics

import (
	"time"
)

const labelLayout = "2 Jan"

// Weekdays lists ISO weekday names, Monday first. Index i holds ISO day i+1.
var Weekdays = [7]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// Range is an inclusive UTC interval with a display label.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Millisecond)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday, evaluated in UTC.
func ISOWeekday(t time.Time) int {
	wd := int(t.UTC().Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ISOWeekStart returns the Monday 00:00 UTC of the ISO week containing t.
func ISOWeekStart(t time.Time) time.Time {
	d := startOfDay(t)
	return d.AddDate(0, 0, 1-ISOWeekday(d))
}

// DayRange covers the UTC calendar day of t.
func DayRange(t time.Time) Range {
	start := startOfDay(t)
	return Range{Start: start, End: endOfDay(start), Label: start.Format(DateLayout)}
}

// WeekRange covers the ISO week (Monday to Sunday) containing t.
func WeekRange(t time.Time) Range {
	start := ISOWeekStart(t)
	last := start.AddDate(0, 0, 6)
	return Range{
		Start: start,
		End:   endOfDay(last),
		Label: start.Format(labelLayout) + " - " + last.Format(labelLayout),
	}
}

// MonthRange covers the whole calendar month.
func MonthRange(year int, month time.Month) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := start.AddDate(0, 1, -1)
	return Range{Start: start, End: endOfDay(last), Label: start.Format("January 2006")}
}

// MonthSegments splits a month into 7-day runs starting on day 1. The last
// run stops at the end of the month instead of spilling into the next one.
func MonthSegments(year int, month time.Month) []Range {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	segments := make([]Range, 0, (days+6)/7)
	for day := 1; day <= days; day += 7 {
		lastDay := day + 6
		if lastDay > days {
			lastDay = days
		}
		start := first.AddDate(0, 0, day-1)
		last := first.AddDate(0, 0, lastDay-1)
		segments = append(segments, Range{
			Start: start,
			End:   endOfDay(last),
			Label: start.Format(labelLayout) + " - " + last.Format(labelLayout),
		})
	}
	return segments
}

// SegmentIndex returns the zero-based month segment t falls in.
func SegmentIndex(t time.Time) int {
	return (t.UTC().Day() - 1) / 7
}
