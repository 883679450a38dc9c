package analytics

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DateLayout is the format listedOn and date query parameters are parsed with.
const DateLayout = "2006-01-02"

// EffectiveDate returns the instant a record is bucketed under: listedOn at
// UTC midnight when it parses as DateLayout, createdAt otherwise.
func EffectiveDate(listedOn string, createdAt time.Time) time.Time {
	if listedOn != "" {
		if t, err := time.Parse(DateLayout, listedOn); err == nil {
			return t
		}
	}
	return createdAt
}

// EffectiveDateExpr is EffectiveDate written as a MongoDB aggregation
// expression. Non-string listedOn values (legacy numeric rows) and strings
// that fail to parse both resolve to createdAt.
func EffectiveDateExpr() bson.M {
	return bson.M{
		"$cond": bson.M{
			"if": bson.M{"$eq": bson.A{bson.M{"$type": "$listedOn"}, "string"}},
			"then": bson.M{
				"$dateFromString": bson.M{
					"dateString": "$listedOn",
					"format":     "%Y-%m-%d",
					"timezone":   "UTC",
					"onError":    "$createdAt",
				},
			},
			"else": "$createdAt",
		},
	}
}
