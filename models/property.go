package models

import (
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Property struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PropertyID          string             `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	Location            string             `bson:"location,omitempty" json:"location,omitempty"`
	Verified            string             `bson:"verified,omitempty" json:"verified,omitempty"`
	Remarks             string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Name                string             `bson:"name,omitempty" json:"name,omitempty"`
	Type                string             `bson:"type,omitempty" json:"type,omitempty"`
	Subtype             string             `bson:"subtype,omitempty" json:"subtype,omitempty"`
	BHK                 LooseNumber        `bson:"bhk,omitempty" json:"bhk,omitempty"`
	Sqft                LooseString        `bson:"sqft,omitempty" json:"sqft,omitempty"`
	Price               LooseNumber        `bson:"price,omitempty" json:"price,omitempty"`
	PlotArea            LooseString        `bson:"plotArea,omitempty" json:"plotArea,omitempty"`
	Unit                string             `bson:"unit,omitempty" json:"unit,omitempty"`
	ListedOn            LooseString        `bson:"listedOn,omitempty" json:"listedOn,omitempty"`
	Status              string             `bson:"status,omitempty" json:"status,omitempty"`
	Agent               LooseString        `bson:"agent,omitempty" json:"agent,omitempty"`
	PricingOptions      string             `bson:"Pricingoptions,omitempty" json:"Pricingoptions,omitempty"`
	PropertyDescription string             `bson:"propertyDescription,omitempty" json:"propertyDescription,omitempty"`
	Images              []string           `bson:"images" json:"images"`
	Premium             string             `bson:"premium,omitempty" json:"premium,omitempty"`
	OwnerName           string             `bson:"ownerName,omitempty" json:"ownerName,omitempty"`
	PhoneNumber         string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	WhatsappNumber      string             `bson:"whatsappNumber,omitempty" json:"whatsappNumber,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveDate is the date the property is bucketed under in analytics.
func (p Property) EffectiveDate() time.Time {
	return analytics.EffectiveDate(string(p.ListedOn), p.CreatedAt)
}

// AnalyticsRecord projects the fields the analytics rules read.
func (p Property) AnalyticsRecord() analytics.Record {
	return analytics.Record{
		ListedOn:  string(p.ListedOn),
		CreatedAt: p.CreatedAt,
		Agent:     string(p.Agent),
		Subtype:   p.Subtype,
	}
}

// PropertyUpdate holds the editable fields of a full-field edit. Zero values
// are left untouched.
type PropertyUpdate struct {
	Location            string   `json:"location"`
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	Subtype             string   `json:"subtype"`
	BHK                 *float64 `json:"bhk"`
	Sqft                string   `json:"sqft"`
	Price               *float64 `json:"price"`
	PlotArea            string   `json:"plotArea"`
	Unit                string   `json:"unit"`
	ListedOn            string   `json:"listedOn"`
	Status              string   `json:"status"`
	Agent               string   `json:"agent"`
	PricingOptions      string   `json:"Pricingoptions"`
	PropertyDescription string   `json:"propertyDescription"`
	OwnerName           string   `json:"ownerName"`
	PhoneNumber         string   `json:"phoneNumber"`
	WhatsappNumber      string   `json:"whatsappNumber"`
	PropertyID          string   `json:"propertyId"`
}

// ImageUpdate replaces the image at Index with Images.
type ImageUpdate struct {
	Index  *int   `json:"index"`
	Images string `json:"images"`
}

// FilterRequest is the body of a structured property filter.
type FilterRequest struct {
	Location string   `json:"location"`
	Subtype  string   `json:"subtype"`
	BHK      *float64 `json:"bhk"`
	MinPrice *float64 `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
	MinSqft  *float64 `json:"minSqft"`
	MaxSqft  *float64 `json:"maxSqft"`
}
