package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcode-github/listing_analytics/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PropertyRepository reads and writes the properties collection.
type PropertyRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewPropertyRepository(coll *mongo.Collection) *PropertyRepository {
	return &PropertyRepository{coll: coll, now: time.Now}
}

// NewestFirst sorts by creation time, latest first.
var NewestFirst = bson.D{{Key: "createdAt", Value: -1}}

func findNewest() *options.FindOneOptions {
	return options.FindOne().SetSort(NewestFirst)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// Insert stores p and fills in its id and timestamps.
func (r *PropertyRepository) Insert(ctx context.Context, p *models.Property) error {
	now := r.now().UTC()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id string) (*models.Property, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, bson.M{"_id": oid})
}

func (r *PropertyRepository) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Property, error) {
	var p models.Property
	err := r.coll.FindOne(ctx, filter, opts...).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}
	return &p, nil
}

// Find returns every match. The result is never nil.
func (r *PropertyRepository) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Property, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	for cursor.Next(ctx) {
		p, err := decodeProperty(cursor)
		if err != nil {
			log.Warn().Err(err).Str("id", p.ID.Hex()).Msg("Skipping unreadable property")
			continue
		}
		properties = append(properties, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read properties: %w", err)
	}
	return properties, nil
}

// decodeProperty decodes the cursor's current document. On failure the
// returned property still carries the _id and propertyId when those are
// readable.
func decodeProperty(cursor *mongo.Cursor) (models.Property, error) {
	var p models.Property
	err := cursor.Decode(&p)
	if err == nil {
		return p, nil
	}
	var ident struct {
		ID         primitive.ObjectID `bson:"_id"`
		PropertyID models.LooseString `bson:"propertyId"`
	}
	_ = bson.Unmarshal(cursor.Current, &ident)
	return models.Property{ID: ident.ID, PropertyID: string(ident.PropertyID)}, fmt.Errorf("decode property %s: %w", ident.ID.Hex(), err)
}

func (r *PropertyRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

// UpdateByID applies set to one record and returns it as updated.
func (r *PropertyRepository) UpdateByID(ctx context.Context, id string, set bson.M) (*models.Property, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.UpdateOne(ctx, bson.M{"_id": oid}, set)
}

// UpdateOne applies set to the first match of filter and stamps updatedAt.
func (r *PropertyRepository) UpdateOne(ctx context.Context, filter, set bson.M) (*models.Property, error) {
	fields := bson.M{"updatedAt": r.now().UTC()}
	for k, v := range set {
		fields[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Property
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	return &p, nil
}

// DeleteByID removes one record and returns what was deleted.
func (r *PropertyRepository) DeleteByID(ctx context.Context, id string) (*models.Property, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p models.Property
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete property: %w", err)
	}
	return &p, nil
}

// Position ranks a record by creation time, newest first. The newest record
// is at position 1.
func (r *PropertyRepository) Position(ctx context.Context, id string) (position, total int64, err error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	total, err = r.Count(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	newer, err := r.Count(ctx, bson.M{"createdAt": bson.M{"$gt": p.CreatedAt}})
	if err != nil {
		return 0, 0, err
	}
	return newer + 1, total, nil
}

// Exists reports whether a record matches DuplicateFilter(p).
func (r *PropertyRepository) Exists(ctx context.Context, p models.Property) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, DuplicateFilter(p), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return n > 0, nil
}

// Each streams every record in _id order without loading the collection
// into memory. A document that does not decode is handed to fn with its
// error and the stream continues.
func (r *PropertyRepository) Each(ctx context.Context, fn func(models.Property, error) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetBatchSize(500)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("open cursor: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		if err := fn(decodeProperty(cursor)); err != nil {
			return err
		}
	}
	return cursor.Err()
}
