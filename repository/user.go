package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcode-github/listing_analytics/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrUserExists = errors.New("user already exists")

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.M{"userID": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Create stores u unless its userID or email is taken.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	for _, field := range []struct{ name, value string }{{"userID", u.UserID}, {"email", u.Email}} {
		n, err := r.coll.CountDocuments(ctx, bson.M{field.name: field.value}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("check %s: %w", field.name, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s taken", ErrUserExists, field.name)
		}
	}
	u.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
