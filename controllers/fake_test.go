package controllers

import (
	"context"
	"errors"
	"sync"

	"github.com/dcode-github/listing_analytics/mirror"
	"github.com/dcode-github/listing_analytics/models"
	"github.com/dcode-github/listing_analytics/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNotImplemented = errors.New("not implemented by fake")

// fakeProperties keeps records in memory. Find ignores the filter.
type fakeProperties struct {
	mu      sync.Mutex
	records []models.Property
	err     error
	finds   int
}

func (f *fakeProperties) Insert(_ context.Context, p *models.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	p.ID = primitive.NewObjectID()
	f.records = append(f.records, *p)
	return nil
}

func (f *fakeProperties) FindByID(_ context.Context, id string) (*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	for i := range f.records {
		if f.records[i].ID == oid {
			p := f.records[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProperties) Find(context.Context, bson.M, ...*options.FindOptions) ([]models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Property{}, f.records...), nil
}

func (f *fakeProperties) Count(context.Context, bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), f.err
}

func (f *fakeProperties) UpdateByID(ctx context.Context, id string, set bson.M) (*models.Property, error) {
	p, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if images, ok := set["images"].([]string); ok {
		p.Images = images
	}
	if remarks, ok := set["remarks"].(string); ok {
		p.Remarks = remarks
	}
	return p, nil
}

func (f *fakeProperties) UpdateOne(context.Context, bson.M, bson.M) (*models.Property, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeProperties) DeleteByID(ctx context.Context, id string) (*models.Property, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeProperties) Position(ctx context.Context, id string) (int64, int64, error) {
	if _, err := f.FindByID(ctx, id); err != nil {
		return 0, 0, err
	}
	return 1, int64(len(f.records)), nil
}

func (f *fakeProperties) Exists(_ context.Context, p models.Property) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.PropertyID == p.PropertyID || (r.Name == p.Name && r.Location == p.Location && r.Price == p.Price) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProperties) AgentStats(context.Context, string) (*models.AgentStats, error) {
	return nil, errNotImplemented
}

func (f *fakeProperties) TopAgents(context.Context) ([]models.TopAgent, error) {
	return nil, errNotImplemented
}

func (f *fakeProperties) Latest(context.Context, string) (*models.Property, int64, error) {
	return nil, 0, errNotImplemented
}

type stubSync struct {
	tally mirror.Tally
	err   error
}

func (s stubSync) Run(context.Context) (mirror.Tally, error) { return s.tally, s.err }
