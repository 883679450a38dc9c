package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMatchFilter(t *testing.T) {
	q := Query{
		Start: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 5, 15, 23, 59, 59, 999_000_000, time.UTC),
	}
	filter := MatchFilter(q)
	and := filter["$expr"].(bson.M)["$and"].(bson.A)
	require.Len(t, and, 2)
	assert.Equal(t, bson.M{"$gte": bson.A{EffectiveDateExpr(), q.Start}}, and[0])
	assert.Equal(t, bson.M{"$lte": bson.A{EffectiveDateExpr(), q.End}}, and[1])
	assert.NotContains(t, filter, "agent")

	q.Agent = "a1"
	assert.Equal(t, "a1", MatchFilter(q)["agent"])
}

func TestWeekdayPipeline_GroupsByISODay(t *testing.T) {
	p := WeekdayPipeline(Query{})
	require.Len(t, p, 4)
	group := p[2][0]
	assert.Equal(t, "$group", group.Key)
	assert.Equal(t, bson.M{"$isoDayOfWeek": "$date"}, group.Value.(bson.M)["_id"])
}

func TestAgentSubtypePipeline_RequiresAgentAndSubtype(t *testing.T) {
	match := AgentSubtypePipeline(Query{})[0][0].Value.(bson.M)
	assert.Contains(t, match, "agent")
	assert.Contains(t, match, "subtype")

	scoped := AgentSubtypePipeline(Query{Agent: "a1"})[0][0].Value.(bson.M)
	assert.Equal(t, "a1", scoped["agent"])
}
