package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLooseString_DecodesLegacyTypes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want LooseString
	}{
		{"string", "2025-05-15", "2025-05-15"},
		{"int32", int32(7), "7"},
		{"int64", int64(1747267200000), "1747267200000"},
		{"double", 12.5, "12.5"},
		{"datetime", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), ""},
		{"null", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"listedOn": tc.in, "agent": tc.in})
			require.NoError(t, err)

			var p Property
			require.NoError(t, bson.Unmarshal(raw, &p))
			assert.Equal(t, tc.want, p.ListedOn)
			assert.Equal(t, tc.want, p.Agent)
		})
	}
}

func TestProperty_EffectiveDate(t *testing.T) {
	created := time.Date(2025, 5, 10, 8, 30, 0, 0, time.UTC)

	p := Property{ListedOn: "2025-05-15", CreatedAt: created}
	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), p.EffectiveDate())

	p.ListedOn = "1747267200000"
	assert.Equal(t, created, p.EffectiveDate())
}

func TestProperty_BSONRoundTripKeepsStrings(t *testing.T) {
	in := Property{PropertyID: "PROP1", ListedOn: "2025-05-15", Agent: "a1", Images: []string{}}
	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "2025-05-15", doc["listedOn"])
	assert.Equal(t, "a1", doc["agent"])
	assert.NotContains(t, doc, "_id")
}

func TestLooseNumber_DecodesLegacyTypes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want LooseNumber
	}{
		{"fractional double", 2.5, 2.5},
		{"int32", int32(3), 3},
		{"int64", int64(4500000), 4500000},
		{"numeric text", " 2.5 ", 2.5},
		{"other text", "2 BHK", 0},
		{"bool", true, 0},
		{"null", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"propertyId": "P1", "bhk": tc.in, "price": tc.in})
			require.NoError(t, err)

			var p Property
			require.NoError(t, bson.Unmarshal(raw, &p))
			assert.Equal(t, "P1", p.PropertyID)
			assert.Equal(t, tc.want, p.BHK)
			assert.Equal(t, tc.want, p.Price)
		})
	}
}

func TestProperty_NumericSqftReadsAsText(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"sqft": int32(1200), "plotArea": 3.5})
	require.NoError(t, err)

	var p Property
	require.NoError(t, bson.Unmarshal(raw, &p))
	assert.Equal(t, LooseString("1200"), p.Sqft)
	assert.Equal(t, LooseString("3.5"), p.PlotArea)
}
