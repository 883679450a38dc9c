package analytics

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MatchFilter selects records whose effective date lies in q and, when set,
// whose agent equals q.Agent. It is valid both as a find/count filter and as
// a $match stage body.
func MatchFilter(q Query) bson.M {
	date := EffectiveDateExpr()
	filter := bson.M{
		"$expr": bson.M{
			"$and": bson.A{
				bson.M{"$gte": bson.A{date, q.Start}},
				bson.M{"$lte": bson.A{date, q.End}},
			},
		},
	}
	if q.Agent != "" {
		filter["agent"] = q.Agent
	}
	return filter
}

func projectEffectiveDate() bson.D {
	return bson.D{{Key: "$project", Value: bson.M{"date": EffectiveDateExpr()}}}
}

// WeekdayPipeline groups matching records by ISO day of week (1..7).
func WeekdayPipeline(q Query) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: MatchFilter(q)}},
		projectEffectiveDate(),
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$isoDayOfWeek": "$date"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

// MonthSegmentPipeline groups matching records by SegmentIndex, i.e.
// floor((dayOfMonth - 1) / 7) of the effective date.
func MonthSegmentPipeline(q Query) mongo.Pipeline {
	segment := bson.M{
		"$toInt": bson.M{
			"$floor": bson.M{
				"$divide": bson.A{
					bson.M{"$subtract": bson.A{bson.M{"$dayOfMonth": "$date"}, 1}},
					7,
				},
			},
		},
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: MatchFilter(q)}},
		projectEffectiveDate(),
		{{Key: "$group", Value: bson.M{
			"_id":   segment,
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

// AgentSubtypePipeline counts records per agent and subtype, then folds the
// subtype counts under each agent.
func AgentSubtypePipeline(q Query) mongo.Pipeline {
	match := MatchFilter(q)
	present := bson.M{"$exists": true, "$nin": bson.A{nil, ""}}
	if q.Agent == "" {
		match["agent"] = present
	}
	match["subtype"] = present

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"agent": "$agent", "subtype": "$subtype"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.agent", Value: 1}, {Key: "_id.subtype", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$_id.agent",
			"subtypes": bson.M{"$push": bson.M{
				"subtype": "$_id.subtype",
				"count":   "$count",
			}},
			"total": bson.M{"$sum": "$count"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"agent":    "$_id",
			"total":    1,
			"subtypes": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "agent", Value: 1}}}},
	}
}
