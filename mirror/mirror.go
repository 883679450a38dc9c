// Package mirror copies property records into a secondary document store.
// Copies are insert-only: a key already present in the mirror is never
// rewritten, and nothing is ever deleted from it.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dcode-github/listing_analytics/models"
)

// SyncedMarker is set on every document written by this package.
const SyncedMarker = "firestoreSynced"

// DefaultBatchSize matches the per-commit document cap of hosted document
// stores such as Firestore.
const DefaultBatchSize = 500

var ErrMissingKey = errors.New("record has no usable mirror key")

// Document is one mirror entry. Data holds the record fields; the store adds
// createdAt and updatedAt when it commits.
type Document struct {
	Key  string
	Data map[string]any
}

// Store is a keyed document store.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Commit writes docs. Implementations either apply all of them or return
	// an error; a *PartialCommitError names the keys that were not written.
	Commit(ctx context.Context, docs []Document) error
	// MaxBatch is the largest len(docs) Commit accepts.
	MaxBatch() int
}

// Source yields every primary record once per call. A record that cannot be
// read is passed to fn with a non-nil err and whatever identifying fields
// could be recovered; the source then moves on to the next record.
type Source interface {
	Each(ctx context.Context, fn func(p models.Property, err error) error) error
}

// Key derives the mirror key of a record from its propertyId.
func Key(p models.Property) (string, error) {
	key := strings.TrimSpace(p.PropertyID)
	if key == "" || strings.Contains(key, "/") {
		return "", fmt.Errorf("%w: propertyId %q", ErrMissingKey, p.PropertyID)
	}
	return key, nil
}

// NewDocument builds the mirror document for a record.
func NewDocument(p models.Property) (Document, error) {
	key, err := Key(p)
	if err != nil {
		return Document{}, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Document{}, fmt.Errorf("encode property %s: %w", key, err)
	}
	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return Document{}, fmt.Errorf("encode property %s: %w", key, err)
	}
	data["_id"] = key
	data[SyncedMarker] = true
	delete(data, "createdAt")
	delete(data, "updatedAt")
	return Document{Key: key, Data: data}, nil
}

// PartialCommitError is returned by stores that cannot commit atomically.
type PartialCommitError struct {
	Failed []string
	Err    error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("%d documents not written: %v", len(e.Failed), e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }

// BatchCommitError aborts a sync run. Keys lists the documents of the failed
// chunk that did not reach the mirror.
type BatchCommitError struct {
	Chunk       int
	Keys        []string
	Uncommitted int
	Err         error
}

func (e *BatchCommitError) Error() string {
	return fmt.Sprintf("mirror: commit of chunk %d failed, %d writes not applied: %v", e.Chunk, e.Uncommitted, e.Err)
}

func (e *BatchCommitError) Unwrap() error { return e.Err }
