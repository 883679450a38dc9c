package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AgentStats struct {
	TotalUploaded     int64   `json:"totalUploaded"`
	TotalSold         int64   `json:"totalSold"`
	DailyUploaded     int64   `json:"dailyUploaded"`
	MonthlyUploaded   int64   `json:"monthlyUploaded"`
	MonthlySold       int64   `json:"monthlySold"`
	LastMonthUploaded int64   `json:"lastMonthUploaded"`
	LastMonthSold     int64   `json:"lastMonthSold"`
	MonthlyTotalValue float64 `json:"monthlyTotalValue"`
}

type AgentListing struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Price      float64            `bson:"price" json:"price"`
	PropertyID string             `bson:"propertyId" json:"propertyId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	Status     string             `bson:"status" json:"status"`
}

type TopAgent struct {
	Agent      LooseString    `bson:"_id" json:"_id"`
	TotalValue float64        `bson:"totalValue" json:"totalValue"`
	Count      int64          `bson:"count" json:"count"`
	Properties []AgentListing `bson:"properties" json:"properties"`
}
