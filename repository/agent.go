package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcode-github/listing_analytics/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const (
	StatusSold   = "Sold"
	topAgentsMax = 5
)

// StatsWindow holds the UTC boundaries agent statistics are counted over.
type StatsWindow struct {
	Today          time.Time
	Month          time.Time
	LastMonth      time.Time
	LastMonthUntil time.Time // exclusive, equal to Month
}

func StatsWindows(now time.Time) StatsWindow {
	now = now.UTC()
	y, m, d := now.Date()
	month := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return StatsWindow{
		Today:          time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Month:          month,
		LastMonth:      month.AddDate(0, -1, 0),
		LastMonthUntil: month,
	}
}

// AgentStats counts an agent's uploads and sales by createdAt. The counts run
// concurrently.
func (r *PropertyRepository) AgentStats(ctx context.Context, agent string) (*models.AgentStats, error) {
	w := StatsWindows(r.now())
	since := func(t time.Time) bson.M { return bson.M{"$gte": t} }
	lastMonth := bson.M{"$gte": w.LastMonth, "$lt": w.LastMonthUntil}
	with := func(extra bson.M) bson.M {
		f := bson.M{"agent": agent}
		for k, v := range extra {
			f[k] = v
		}
		return f
	}

	var stats models.AgentStats
	counts := []struct {
		dst    *int64
		filter bson.M
	}{
		{&stats.TotalUploaded, with(nil)},
		{&stats.TotalSold, with(bson.M{"status": StatusSold})},
		{&stats.DailyUploaded, with(bson.M{"createdAt": since(w.Today)})},
		{&stats.MonthlyUploaded, with(bson.M{"createdAt": since(w.Month)})},
		{&stats.MonthlySold, with(bson.M{"status": StatusSold, "createdAt": since(w.Month)})},
		{&stats.LastMonthUploaded, with(bson.M{"createdAt": lastMonth})},
		{&stats.LastMonthSold, with(bson.M{"status": StatusSold, "createdAt": lastMonth})},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := r.coll.CountDocuments(gctx, c.filter)
			if err != nil {
				return fmt.Errorf("count agent stats: %w", err)
			}
			*c.dst = n
			return nil
		})
	}
	g.Go(func() error {
		total, err := r.sumPrice(gctx, with(bson.M{"createdAt": since(w.Month)}))
		if err != nil {
			return err
		}
		stats.MonthlyTotalValue = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *PropertyRepository) sumPrice(ctx context.Context, match bson.M) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "totalPrice": bson.M{"$sum": "$price"}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("sum agent value: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalPrice float64 `bson:"totalPrice"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("sum agent value: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalPrice, nil
}

// TopAgentsPipeline ranks agents by the summed price of listings created
// since start.
func TopAgentsPipeline(start time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": start}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$agent",
			"totalValue": bson.M{"$sum": "$price"},
			"count":      bson.M{"$sum": 1},
			"properties": bson.M{"$push": bson.M{
				"_id":        "$_id",
				"name":       "$name",
				"price":      "$price",
				"propertyId": "$propertyId",
				"createdAt":  "$createdAt",
				"status":     "$status",
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalValue", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: topAgentsMax}},
	}
}

func (r *PropertyRepository) TopAgents(ctx context.Context) ([]models.TopAgent, error) {
	cursor, err := r.coll.Aggregate(ctx, TopAgentsPipeline(StatsWindows(r.now()).Month))
	if err != nil {
		return nil, fmt.Errorf("top agents: %w", err)
	}
	defer cursor.Close(ctx)

	agents := []models.TopAgent{}
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("top agents: %w", err)
	}
	return agents, nil
}

// Latest returns an agent's newest listing, or nil, with their listing count.
func (r *PropertyRepository) Latest(ctx context.Context, agent string) (*models.Property, int64, error) {
	var (
		latest *models.Property
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := r.FindOne(gctx, bson.M{"agent": agent}, findNewest())
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		latest = p
		return nil
	})
	g.Go(func() error {
		n, err := r.Count(gctx, bson.M{"agent": agent})
		total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return latest, total, nil
}
