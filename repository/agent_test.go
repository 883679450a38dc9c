package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStatsWindows(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	w := StatsWindows(time.Date(2025, 3, 1, 2, 0, 0, 0, ist))

	// 2025-02-28T20:30Z
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), w.Today)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), w.Month)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.LastMonth)
	assert.Equal(t, w.Month, w.LastMonthUntil)
}

func TestStatsWindows_January(t *testing.T) {
	w := StatsWindows(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), w.LastMonth)
}

func TestTopAgentsPipeline(t *testing.T) {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	p := TopAgentsPipeline(start)

	assert.Len(t, p, 4)
	assert.Equal(t, bson.M{"createdAt": bson.M{"$gte": start}}, p[0][0].Value)
	assert.Equal(t, "$limit", p[3][0].Key)
	assert.Equal(t, topAgentsMax, p[3][0].Value)
}
