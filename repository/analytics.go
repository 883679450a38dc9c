package repository

import (
	"context"

	"github.com/dcode-github/listing_analytics/analytics"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnalyticsRepository answers analytics.Store queries with aggregation
// pipelines over the properties collection.
type AnalyticsRepository struct {
	coll *mongo.Collection
}

func NewAnalyticsRepository(coll *mongo.Collection) *AnalyticsRepository {
	return &AnalyticsRepository{coll: coll}
}

var _ analytics.Store = (*AnalyticsRepository)(nil)

type keyedCount struct {
	Key   int   `bson:"_id"`
	Count int64 `bson:"count"`
}

func (r *AnalyticsRepository) Count(ctx context.Context, q analytics.Query) (int64, error) {
	return r.coll.CountDocuments(ctx, analytics.MatchFilter(q))
}

func (r *AnalyticsRepository) CountByWeekday(ctx context.Context, q analytics.Query) (map[int]int64, error) {
	return r.keyedCounts(ctx, analytics.WeekdayPipeline(q))
}

func (r *AnalyticsRepository) CountByMonthSegment(ctx context.Context, q analytics.Query) (map[int]int64, error) {
	return r.keyedCounts(ctx, analytics.MonthSegmentPipeline(q))
}

func (r *AnalyticsRepository) keyedCounts(ctx context.Context, pipeline mongo.Pipeline) (map[int]int64, error) {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []keyedCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *AnalyticsRepository) AgentSubtypes(ctx context.Context, q analytics.Query) ([]analytics.AgentSubtypes, error) {
	cursor, err := r.coll.Aggregate(ctx, analytics.AgentSubtypePipeline(q))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []analytics.AgentSubtypes{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
