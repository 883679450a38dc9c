// Package analyticstest holds the record fixture every analytics.Store
// implementation is checked against, so the in-process date rule and the
// Mongo aggregation expressions cannot drift apart.
package analyticstest

import (
	"context"
	"testing"
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/stretchr/testify/require"
)

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		panic(err)
	}
	return t
}

// Records is centred on Thursday 2025-05-15.
var Records = []analytics.Record{
	{ListedOn: "2025-05-15", CreatedAt: at("2025-01-01T09:00:00Z"), Agent: "a1", Subtype: "Villa"},
	{CreatedAt: at("2025-05-15T10:00:00Z"), Agent: "a1", Subtype: "Plot"},
	{ListedOn: "not-a-date", CreatedAt: at("2025-05-15T23:59:59Z"), Agent: "a2", Subtype: "Villa"},
	{ListedOn: "2025-05-12", CreatedAt: at("2025-05-15T08:00:00Z"), Agent: "a2", Subtype: "Villa"},
	{ListedOn: "2025-05-18", CreatedAt: at("2024-12-31T12:00:00Z")},
	{ListedOn: "2025-05-20", CreatedAt: at("2025-05-15T12:00:00Z"), Agent: "a1"},
	{CreatedAt: at("2025-05-16T00:00:00Z"), Agent: "a1", Subtype: "Villa"},
	{ListedOn: "2025-05-31", CreatedAt: at("2025-06-02T00:00:00Z"), Agent: "a3", Subtype: "Flat"},
	{ListedOn: "2025-05-01", CreatedAt: at("2025-03-01T00:00:00Z"), Agent: "a3", Subtype: "Flat"},
	{CreatedAt: at("2025-04-30T23:59:59.999Z"), Agent: "a1", Subtype: "Villa"},
	{ListedOn: "2025-06-01", CreatedAt: at("2025-05-15T00:00:00Z"), Agent: "a1", Subtype: "Villa"},
}

func counts(report []analytics.BucketCount) []int64 {
	out := make([]int64, len(report))
	for i, b := range report {
		out[i] = b.Count
	}
	return out
}

// RunStoreSuite loads Records into the store returned by newStore and checks
// every aggregation against hand-computed expectations.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T, records []analytics.Record) analytics.Store) {
	t.Helper()
	ctx := context.Background()
	agg := analytics.NewAggregator(newStore(t, Records))

	t.Run("day", func(t *testing.T) {
		report, err := agg.Aggregate(ctx, "day", analytics.Params{Date: "2025-05-15"})
		require.NoError(t, err)
		require.Equal(t, "2025-05-15", report.RangeLabel)
		require.Equal(t, int64(3), report.TotalCount)
		require.Equal(t, []int64{0, 0, 0, 3, 0, 0, 0}, counts(report.Data))
	})

	t.Run("week", func(t *testing.T) {
		report, err := agg.Aggregate(ctx, "week", analytics.Params{Date: "2025-05-15"})
		require.NoError(t, err)
		require.Equal(t, "12 May - 18 May", report.WeekRange)
		require.Equal(t, int64(6), report.TotalCount)
		require.Equal(t, []int64{1, 0, 0, 3, 1, 0, 1}, counts(report.Data))
	})

	t.Run("month", func(t *testing.T) {
		report, err := agg.Aggregate(ctx, "month", analytics.Params{Year: "2025", Month: "5"})
		require.NoError(t, err)
		require.Equal(t, int64(9), report.TotalCount)
		require.Equal(t, []int64{1, 1, 6, 0, 1}, counts(report.Data))
		require.Equal(t, "29 May - 31 May", report.Data[4].Label)
	})

	t.Run("agent scope", func(t *testing.T) {
		report, err := agg.Aggregate(ctx, "day", analytics.Params{Date: "2025-05-15", Agent: "a1"})
		require.NoError(t, err)
		require.Equal(t, int64(2), report.TotalCount)
		require.Equal(t, []int64{0, 0, 0, 2, 0, 0, 0}, counts(report.Data))
	})

	t.Run("agent subtypes", func(t *testing.T) {
		report, err := agg.AgentSubtypes(ctx, "week", analytics.Params{Date: "2025-05-15"})
		require.NoError(t, err)
		require.Equal(t, int64(5), report.TotalCount)
		require.Equal(t, []analytics.AgentSubtypes{
			{Agent: "a1", Total: 3, Subtypes: []analytics.SubtypeCount{{Subtype: "Plot", Count: 1}, {Subtype: "Villa", Count: 2}}},
			{Agent: "a2", Total: 2, Subtypes: []analytics.SubtypeCount{{Subtype: "Villa", Count: 2}}},
		}, report.Data)
	})
}
