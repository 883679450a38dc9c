package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	maxPoolSize            = 10
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
)

// Database owns the Mongo client and the collections the server reads.
type Database struct {
	Client     *mongo.Client
	Users      *mongo.Collection
	Properties *mongo.Collection
}

func ConnectDB(ctx context.Context, cfg MongoConfig) (*Database, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MONGOURI not set in environment")
	}

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(maxPoolSize).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")
	db := client.Database(cfg.Database)
	return &Database{
		Client:     client,
		Users:      db.Collection("users"),
		Properties: db.Collection("properties"),
	}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

func (d *Database) Close(ctx context.Context) error {
	if err := d.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	log.Info().Msg("MongoDB connection closed")
	return nil
}
