package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/dcode-github/listing_analytics/analytics/analyticstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Fixture(t *testing.T) {
	analyticstest.RunStoreSuite(t, func(_ *testing.T, records []analytics.Record) analytics.Store {
		return analytics.NewMemoryStore(records...)
	})
}

func TestAggregate_EmptyFebruary(t *testing.T) {
	agg := analytics.NewAggregator(analytics.NewMemoryStore())

	report, err := agg.Aggregate(context.Background(), "month", analytics.Params{Year: "2025", Month: "2"})
	require.NoError(t, err)
	assert.Equal(t, analytics.GroupByMonth, report.GroupBy)
	assert.Equal(t, "February 2025", report.RangeLabel)
	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, 2, report.Month)
	assert.Zero(t, report.TotalCount)
	assert.Equal(t, []analytics.BucketCount{
		{Label: "1 Feb - 7 Feb"},
		{Label: "8 Feb - 14 Feb"},
		{Label: "15 Feb - 21 Feb"},
		{Label: "22 Feb - 28 Feb"},
	}, report.Data)
}

func TestAggregate_DefaultsToToday(t *testing.T) {
	store := analytics.NewMemoryStore(analytics.Record{CreatedAt: time.Date(2025, 5, 17, 6, 0, 0, 0, time.UTC)})
	agg := analytics.NewAggregator(store).WithClock(func() time.Time {
		return time.Date(2025, 5, 17, 22, 0, 0, 0, time.FixedZone("X", 5*3600))
	})

	report, err := agg.Aggregate(context.Background(), "", analytics.Params{})
	require.NoError(t, err)
	assert.Equal(t, analytics.GroupByDay, report.GroupBy)
	assert.Equal(t, "2025-05-17", report.RangeLabel)
	assert.Equal(t, int64(1), report.TotalCount)
	assert.Equal(t, "Saturday", report.Data[5].Label)
	assert.Equal(t, int64(1), report.Data[5].Count)
}

func TestAggregate_DenseWeekdaysInFixedOrder(t *testing.T) {
	agg := analytics.NewAggregator(analytics.NewMemoryStore())

	report, err := agg.Aggregate(context.Background(), "week", analytics.Params{Date: "2025-05-15"})
	require.NoError(t, err)
	require.Len(t, report.Data, 7)
	for i, b := range report.Data {
		assert.Equal(t, analytics.Weekdays[i], b.Label)
		assert.Zero(t, b.Count)
	}
	assert.Equal(t, "2025-05-15", report.Date)
	assert.Equal(t, time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC), report.RangeStart)
	assert.Equal(t, time.Date(2025, 5, 18, 23, 59, 59, 999_000_000, time.UTC), report.RangeEnd)
}

type countingStore struct {
	analytics.Store
	calls int
}

func (s *countingStore) Count(ctx context.Context, q analytics.Query) (int64, error) {
	s.calls++
	return s.Store.Count(ctx, q)
}

func TestAggregate_InvalidParameters(t *testing.T) {
	cases := []struct {
		name    string
		groupBy string
		params  analytics.Params
	}{
		{"bad day date", "day", analytics.Params{Date: "15-05-2025"}},
		{"bad week date", "week", analytics.Params{Date: "2025-02-30"}},
		{"month without year", "month", analytics.Params{Month: "2"}},
		{"month without month", "month", analytics.Params{Year: "2025"}},
		{"month zero", "month", analytics.Params{Year: "2025", Month: "0"}},
		{"month thirteen", "month", analytics.Params{Year: "2025", Month: "13"}},
		{"month not a number", "month", analytics.Params{Year: "2025", Month: "1.5"}},
		{"year not a number", "month", analytics.Params{Year: "twenty", Month: "1"}},
		{"unknown grouping", "year", analytics.Params{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &countingStore{Store: analytics.NewMemoryStore()}
			_, err := analytics.NewAggregator(store).Aggregate(context.Background(), tc.groupBy, tc.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, analytics.ErrInvalidParameter)
			assert.Zero(t, store.calls)
		})
	}
}

func TestAggregate_StoreFailure(t *testing.T) {
	store := analytics.NewMemoryStore()
	store.FailWith(errors.New("server selection timeout"))

	_, err := analytics.NewAggregator(store).Aggregate(context.Background(), "day", analytics.Params{Date: "2025-05-15"})
	require.Error(t, err)
	assert.ErrorIs(t, err, analytics.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "server selection timeout")
}

func TestAggregate_MonthSegmentsCoverEveryRecord(t *testing.T) {
	store := analytics.NewMemoryStore()
	for day := 1; day <= 31; day++ {
		store.Add(analytics.Record{ListedOn: time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC).Format(analytics.DateLayout)})
	}

	report, err := analytics.NewAggregator(store).Aggregate(context.Background(), "month", analytics.Params{Year: "2025", Month: "03"})
	require.NoError(t, err)
	require.Len(t, report.Data, 5)

	var sum int64
	for _, b := range report.Data {
		sum += b.Count
	}
	assert.Equal(t, report.TotalCount, sum)
	assert.Equal(t, int64(31), sum)
	assert.Equal(t, int64(3), report.Data[4].Count)
}

func TestWeekdayCounts(t *testing.T) {
	store := analytics.NewMemoryStore(analyticstest.Records...)
	agg := analytics.NewAggregator(store)

	series, total, err := agg.WeekdayCounts(context.Background(), analytics.Query{
		Start: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 5, 31, 23, 59, 59, 999_000_000, time.UTC),
		Agent: "a3",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), series[3].Count) // 2025-05-01
	assert.Equal(t, int64(1), series[5].Count) // 2025-05-31

	_, _, err = agg.WeekdayCounts(context.Background(), analytics.Query{
		Start: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, analytics.ErrInvalidParameter)
}

func TestAgentSubtypes_EmptyRangeReturnsEmptySlice(t *testing.T) {
	report, err := analytics.NewAggregator(analytics.NewMemoryStore()).
		AgentSubtypes(context.Background(), "month", analytics.Params{Year: "2024", Month: "1"})
	require.NoError(t, err)
	assert.NotNil(t, report.Data)
	assert.Empty(t, report.Data)
	assert.Equal(t, 2024, report.Year)
}
