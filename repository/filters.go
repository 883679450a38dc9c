package repository

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dcode-github/listing_analytics/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VerifiedByAdmin = "Verified by Admin"
	RejectedByAdmin = "Rejected by Admin"
)

// contains matches text anywhere in a field, case-insensitively. User input
// is always quoted.
func contains(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(text)), Options: "i"}
}

func equalFold(text string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(text)) + "$", Options: "i"}
}

// PinnedFilter selects premium listings that are verified or were never
// reviewed.
func PinnedFilter() bson.M {
	return bson.M{
		"premium": "pin",
		"$or": bson.A{
			bson.M{"verified": VerifiedByAdmin},
			bson.M{"verified": bson.M{"$exists": false}},
		},
	}
}

func toIntOrNull(field string) bson.M {
	return bson.M{"$convert": bson.M{"input": field, "to": "int", "onError": nil, "onNull": nil}}
}

// BodyFilter builds the structured property filter. It returns ErrNoFilter
// when no criterion is set.
func BodyFilter(req models.FilterRequest) (bson.M, error) {
	filter := bson.M{}

	if strings.TrimSpace(req.Location) != "" {
		filter["location"] = bson.M{"$regex": contains(req.Location)}
	}
	if strings.TrimSpace(req.Subtype) != "" {
		filter["subtype"] = bson.M{"$regex": equalFold(req.Subtype)}
	}
	if req.BHK != nil && *req.BHK != 0 {
		filter["bhk"] = *req.BHK
	}

	price := bson.M{}
	if req.MinPrice != nil {
		price["$gte"] = *req.MinPrice
	}
	if req.MaxPrice != nil {
		price["$lte"] = *req.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	// null sorts below every number, so unconvertible sqft is excluded
	// explicitly.
	if req.MinSqft != nil || req.MaxSqft != nil {
		sqft := toIntOrNull("$sqft")
		area := bson.A{bson.M{"$ne": bson.A{sqft, nil}}}
		if req.MinSqft != nil {
			area = append(area, bson.M{"$gte": bson.A{sqft, *req.MinSqft}})
		}
		if req.MaxSqft != nil {
			area = append(area, bson.M{"$lte": bson.A{sqft, *req.MaxSqft}})
		}
		filter["$expr"] = bson.M{"$and": area}
	}

	if len(filter) == 0 {
		return nil, ErrNoFilter
	}
	return filter, nil
}

// SearchFilter matches text against name, propertyId or location.
func SearchFilter(text string) bson.M {
	re := contains(text)
	return bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": re}},
		bson.M{"propertyId": bson.M{"$regex": re}},
		bson.M{"location": bson.M{"$regex": re}},
	}}
}

// AgentSearchFilter matches an agent's listings by name or propertyId.
func AgentSearchFilter(agent, text string) bson.M {
	re := contains(text)
	return bson.M{
		"agent": agent,
		"$or": bson.A{
			bson.M{"name": bson.M{"$regex": re}},
			bson.M{"propertyId": bson.M{"$regex": re}},
		},
	}
}

func LocationFilter(location string) bson.M {
	return bson.M{"location": bson.M{"$regex": contains(location)}}
}

// AgentFilter matches an agent id stored either as text or as a number.
func AgentFilter(agentID string) bson.M {
	agentID = strings.TrimSpace(agentID)
	n, err := strconv.Atoi(agentID)
	if err != nil {
		return bson.M{"agent": agentID}
	}
	return bson.M{"$or": bson.A{
		bson.M{"agent": agentID},
		bson.M{"agent": n},
	}}
}

// DuplicateFilter matches an existing record with the same propertyId, or
// with the same name, location and price.
func DuplicateFilter(p models.Property) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"propertyId": p.PropertyID},
		bson.M{"name": p.Name, "location": p.Location, "price": float64(p.Price)},
	}}
}

// UpdateSet lists the fields of u that are set. Text fields are set when
// non-empty; bhk and price when present.
func UpdateSet(u models.PropertyUpdate) bson.M {
	set := bson.M{}
	text := map[string]string{
		"location":            u.Location,
		"name":                u.Name,
		"type":                u.Type,
		"subtype":             u.Subtype,
		"sqft":                u.Sqft,
		"plotArea":            u.PlotArea,
		"unit":                u.Unit,
		"listedOn":            u.ListedOn,
		"status":              u.Status,
		"agent":               u.Agent,
		"Pricingoptions":      u.PricingOptions,
		"propertyDescription": u.PropertyDescription,
		"ownerName":           u.OwnerName,
		"phoneNumber":         u.PhoneNumber,
		"whatsappNumber":      u.WhatsappNumber,
		"propertyId":          u.PropertyID,
	}
	for field, v := range text {
		if v != "" {
			set[field] = v
		}
	}
	if u.BHK != nil {
		set["bhk"] = *u.BHK
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	return set
}

// ApplyImageUpdates returns a copy of images with every update applied.
func ApplyImageUpdates(images []string, updates []models.ImageUpdate) ([]string, error) {
	if len(updates) == 0 {
		return nil, invalidInput("Updates array is required")
	}
	out := append([]string(nil), images...)
	for _, u := range updates {
		if u.Index == nil {
			return nil, invalidInput("Each update must contain index and imageUrl")
		}
		if *u.Index < 0 || *u.Index >= len(out) {
			return nil, invalidInput(fmt.Sprintf("Index %d out of bounds. Total images: %d", *u.Index, len(out)))
		}
		out[*u.Index] = u.Images
	}
	return out, nil
}
