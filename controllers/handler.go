package controllers

import (
	"context"
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/dcode-github/listing_analytics/cache"
	"github.com/dcode-github/listing_analytics/mirror"
	"github.com/dcode-github/listing_analytics/models"
	"github.com/dcode-github/listing_analytics/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContextKey string

const UserIDKey = ContextKey("userID")

// PropertyStore is the record store surface the handlers use.
// *repository.PropertyRepository implements it.
type PropertyStore interface {
	Insert(ctx context.Context, p *models.Property) error
	FindByID(ctx context.Context, id string) (*models.Property, error)
	Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Property, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	UpdateByID(ctx context.Context, id string, set bson.M) (*models.Property, error)
	UpdateOne(ctx context.Context, filter, set bson.M) (*models.Property, error)
	DeleteByID(ctx context.Context, id string) (*models.Property, error)
	Position(ctx context.Context, id string) (position, total int64, err error)
	Exists(ctx context.Context, p models.Property) (bool, error)
	AgentStats(ctx context.Context, agent string) (*models.AgentStats, error)
	TopAgents(ctx context.Context) ([]models.TopAgent, error)
	Latest(ctx context.Context, agent string) (*models.Property, int64, error)
}

type UserStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// Syncer runs one mirror sync pass. *jobs.SyncJob implements it.
type Syncer interface {
	Run(ctx context.Context) (mirror.Tally, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

// Handler holds the collaborators of every route.
type Handler struct {
	Properties  PropertyStore
	Users       UserStore
	Aggregator  *analytics.Aggregator
	Mirror      mirror.Store
	Sync        Syncer
	SyncTimeout time.Duration
	Cache       *cache.Cache
	Tokens      *utils.TokenIssuer
	Health      map[string]Pinger
	// Development adds error details to 5xx responses.
	Development bool
}
