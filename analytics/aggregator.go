package analytics

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// Params carries the raw query values of an analytics request.
type Params struct {
	Date  string
	Year  string
	Month string
	Agent string
}

// Query scopes a store call to an inclusive range and, optionally, one agent.
type Query struct {
	Start time.Time
	End   time.Time
	Agent string
}

// Store is the record store surface the aggregator needs. Every method must
// resolve record dates with EffectiveDate semantics.
type Store interface {
	Count(ctx context.Context, q Query) (int64, error)
	// CountByWeekday keys counts by ISO weekday, 1 (Monday) to 7 (Sunday).
	CountByWeekday(ctx context.Context, q Query) (map[int]int64, error)
	// CountByMonthSegment keys counts by SegmentIndex of the effective date.
	CountByMonthSegment(ctx context.Context, q Query) (map[int]int64, error)
	AgentSubtypes(ctx context.Context, q Query) ([]AgentSubtypes, error)
}

type BucketCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Report struct {
	GroupBy    GroupBy       `json:"groupBy"`
	Date       string        `json:"date,omitempty"`
	WeekRange  string        `json:"weekRange,omitempty"`
	Year       int           `json:"year,omitempty"`
	Month      int           `json:"month,omitempty"`
	RangeLabel string        `json:"rangeLabel"`
	RangeStart time.Time     `json:"rangeStart"`
	RangeEnd   time.Time     `json:"rangeEnd"`
	TotalCount int64         `json:"totalCount"`
	Data       []BucketCount `json:"data"`
}

type SubtypeCount struct {
	Subtype string `json:"subtype" bson:"subtype"`
	Count   int64  `json:"count" bson:"count"`
}

type AgentSubtypes struct {
	Agent    string         `json:"agent" bson:"agent"`
	Total    int64          `json:"total" bson:"total"`
	Subtypes []SubtypeCount `json:"subtypes" bson:"subtypes"`
}

type AgentReport struct {
	GroupBy    GroupBy         `json:"groupBy"`
	Date       string          `json:"date,omitempty"`
	WeekRange  string          `json:"weekRange,omitempty"`
	Year       int             `json:"year,omitempty"`
	Month      int             `json:"month,omitempty"`
	TotalCount int64           `json:"totalCount"`
	Data       []AgentSubtypes `json:"data"`
}

// Aggregator turns grouping requests into dense, chronologically ordered
// bucket counts.
type Aggregator struct {
	store Store
	now   func() time.Time
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// WithClock replaces the clock used for the default date.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// selection is a validated request: the bucket kind plus its range.
type selection struct {
	groupBy GroupBy
	rng     Range
	date    string
	year    int
	month   time.Month
}

// Resolve validates groupBy and params and returns the range they select.
// An empty groupBy means day.
func (a *Aggregator) Resolve(groupBy string, p Params) (Range, error) {
	sel, err := a.resolve(groupBy, p)
	if err != nil {
		return Range{}, err
	}
	return sel.rng, nil
}

func (a *Aggregator) resolve(groupBy string, p Params) (selection, error) {
	gb := GroupBy(strings.TrimSpace(groupBy))
	if gb == "" {
		gb = GroupByDay
	}

	switch gb {
	case GroupByDay, GroupByWeek:
		target, err := a.targetDate(p.Date)
		if err != nil {
			return selection{}, err
		}
		sel := selection{groupBy: gb, date: strings.TrimSpace(p.Date)}
		if gb == GroupByDay {
			sel.rng = DayRange(target)
		} else {
			sel.rng = WeekRange(target)
		}
		return sel, nil
	case GroupByMonth:
		year, month, err := parseYearMonth(p.Year, p.Month)
		if err != nil {
			return selection{}, err
		}
		return selection{groupBy: gb, rng: MonthRange(year, month), year: year, month: month}, nil
	default:
		return selection{}, invalidParam("Invalid groupBy value. Use 'day', 'week', or 'month'.")
	}
}

func (a *Aggregator) targetDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return a.now().UTC(), nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, invalidParam("Invalid date format. Use YYYY-MM-DD.")
	}
	return t, nil
}

func parseYearMonth(rawYear, rawMonth string) (int, time.Month, error) {
	const msg = "Valid year and month (1-12) are required for month view."
	rawYear, rawMonth = strings.TrimSpace(rawYear), strings.TrimSpace(rawMonth)
	if rawYear == "" || rawMonth == "" {
		return 0, 0, invalidParam(msg)
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, invalidParam(msg)
	}
	month, err := strconv.Atoi(rawMonth)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, invalidParam(msg)
	}
	return year, time.Month(month), nil
}

// Aggregate counts records per bucket for the requested grouping. Day and
// week reports hold seven Monday-first entries; month reports hold one entry
// per 7-day segment. Missing buckets are reported with a zero count.
func (a *Aggregator) Aggregate(ctx context.Context, groupBy string, p Params) (*Report, error) {
	sel, err := a.resolve(groupBy, p)
	if err != nil {
		return nil, err
	}
	q := Query{Start: sel.rng.Start, End: sel.rng.End, Agent: strings.TrimSpace(p.Agent)}

	total, err := a.store.Count(ctx, q)
	if err != nil {
		return nil, storeErr("count", err)
	}

	report := &Report{
		GroupBy:    sel.groupBy,
		RangeLabel: sel.rng.Label,
		RangeStart: sel.rng.Start,
		RangeEnd:   sel.rng.End,
		TotalCount: total,
	}

	switch sel.groupBy {
	case GroupByDay, GroupByWeek:
		counts, err := a.store.CountByWeekday(ctx, q)
		if err != nil {
			return nil, storeErr("count by weekday", err)
		}
		report.Data = WeekdaySeries(counts)
		if sel.groupBy == GroupByDay {
			report.Date = sel.rng.Label
		} else {
			report.Date = sel.date
			report.WeekRange = sel.rng.Label
		}
	case GroupByMonth:
		counts, err := a.store.CountByMonthSegment(ctx, q)
		if err != nil {
			return nil, storeErr("count by month segment", err)
		}
		report.Data = SegmentSeries(MonthSegments(sel.year, sel.month), counts)
		report.Year = sel.year
		report.Month = int(sel.month)
	}
	return report, nil
}

// WeekdayCounts returns the Monday-first weekday series for an arbitrary
// inclusive range, optionally limited to one agent.
func (a *Aggregator) WeekdayCounts(ctx context.Context, q Query) ([]BucketCount, int64, error) {
	if q.End.Before(q.Start) {
		return nil, 0, invalidParam("endDate must not be before startDate.")
	}
	counts, err := a.store.CountByWeekday(ctx, q)
	if err != nil {
		return nil, 0, storeErr("count by weekday", err)
	}
	series := WeekdaySeries(counts)
	var total int64
	for _, b := range series {
		total += b.Count
	}
	return series, total, nil
}

// AgentSubtypes reports per-agent subtype counts over the same ranges as
// Aggregate, busiest agent first.
func (a *Aggregator) AgentSubtypes(ctx context.Context, groupBy string, p Params) (*AgentReport, error) {
	sel, err := a.resolve(groupBy, p)
	if err != nil {
		return nil, err
	}
	rows, err := a.store.AgentSubtypes(ctx, Query{Start: sel.rng.Start, End: sel.rng.End, Agent: strings.TrimSpace(p.Agent)})
	if err != nil {
		return nil, storeErr("agent subtypes", err)
	}
	if rows == nil {
		rows = []AgentSubtypes{}
	}

	report := &AgentReport{GroupBy: sel.groupBy, Data: rows}
	for _, row := range rows {
		report.TotalCount += row.Total
	}
	switch sel.groupBy {
	case GroupByDay:
		report.Date = sel.rng.Label
	case GroupByWeek:
		report.Date = sel.date
		report.WeekRange = sel.rng.Label
	case GroupByMonth:
		report.Year = sel.year
		report.Month = int(sel.month)
	}
	return report, nil
}

// WeekdaySeries expands sparse ISO weekday counts into seven entries in
// Monday..Sunday order.
func WeekdaySeries(counts map[int]int64) []BucketCount {
	series := make([]BucketCount, len(Weekdays))
	for i, name := range Weekdays {
		series[i] = BucketCount{Label: name, Count: counts[i+1]}
	}
	return series
}

// SegmentSeries pairs each month segment with its count, zero when absent.
func SegmentSeries(segments []Range, counts map[int]int64) []BucketCount {
	series := make([]BucketCount, len(segments))
	for i, seg := range segments {
		series[i] = BucketCount{Label: seg.Label, Count: counts[i]}
	}
	return series
}
