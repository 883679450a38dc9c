package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dcode-github/listing_analytics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func properties(n int) SliceSource {
	out := make(SliceSource, n)
	for i := range out {
		out[i] = models.Property{
			PropertyID: fmt.Sprintf("PROP%04d", i+1),
			Name:       fmt.Sprintf("Listing %d", i+1),
			Images:     []string{"https://img.example/1.jpg"},
		}
	}
	return out
}

func TestSyncAll_IsIdempotent(t *testing.T) {
	store := NewMemoryStore(0)
	s := NewSynchronizer(properties(25), store, Options{})

	tally, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Synced: 25}, tally)
	assert.Equal(t, 25, store.Len())

	tally, err = s.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Skipped: 25}, tally)
	assert.Equal(t, 1, store.Commits())
}

func TestSyncAll_DocumentShape(t *testing.T) {
	store := NewMemoryStore(0)
	src := SliceSource{{PropertyID: " PROP9 ", Name: "Sea view", Price: 4500000}}

	_, err := NewSynchronizer(src, store, Options{}).SyncAll(context.Background())
	require.NoError(t, err)

	doc, ok := store.Get("PROP9")
	require.True(t, ok)
	assert.Equal(t, "PROP9", doc["_id"])
	assert.Equal(t, true, doc[SyncedMarker])
	assert.Equal(t, "Sea view", doc["name"])
	assert.Equal(t, float64(4500000), doc["price"])
	assert.Contains(t, doc, "createdAt")
	assert.Contains(t, doc, "updatedAt")
}

func TestSyncAll_RecordWithoutKeyErrorsAlone(t *testing.T) {
	src := properties(4)
	src[1].PropertyID = "  "
	src[2].PropertyID = "a/b"
	store := NewMemoryStore(0)

	tally, err := NewSynchronizer(src, store, Options{}).SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Synced: 2, Errored: 2}, tally)
	assert.Equal(t, 2, store.Len())
}

func TestSyncAll_ExistenceCheckFailureIsCounted(t *testing.T) {
	store := NewMemoryStore(0)
	store.FailExists("PROP0002", errors.New("deadline exceeded"))

	tally, err := NewSynchronizer(properties(3), store, Options{Concurrency: 2}).SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Synced: 2, Errored: 1}, tally)
	_, ok := store.Get("PROP0002")
	assert.False(t, ok)
}

func TestSyncAll_ChunksByBatchLimit(t *testing.T) {
	store := NewMemoryStore(10)

	tally, err := NewSynchronizer(properties(25), store, Options{}).SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, tally.Synced)
	assert.Equal(t, 3, store.Commits())
}

func TestSyncAll_CommitFailureIsFatal(t *testing.T) {
	store := NewMemoryStore(10)
	store.FailCommit(errors.New("quota exceeded"))

	tally, err := NewSynchronizer(properties(4), store, Options{}).SyncAll(context.Background())
	require.Error(t, err)

	var commitErr *BatchCommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, 1, commitErr.Chunk)
	assert.Equal(t, 4, commitErr.Uncommitted)
	assert.Len(t, commitErr.Keys, 4)
	assert.Zero(t, tally.Synced)
	assert.Zero(t, store.Len())
}

type partialStore struct {
	*MemoryStore
	reject string
}

func (p *partialStore) Commit(ctx context.Context, docs []Document) error {
	var keep []Document
	for _, d := range docs {
		if d.Key != p.reject {
			keep = append(keep, d)
		}
	}
	if err := p.MemoryStore.Commit(ctx, keep); err != nil {
		return err
	}
	if len(keep) < len(docs) {
		return &PartialCommitError{Failed: []string{p.reject}, Err: errors.New("access denied")}
	}
	return nil
}

func TestSyncAll_PartialCommitAttributesKeys(t *testing.T) {
	store := &partialStore{MemoryStore: NewMemoryStore(0), reject: "PROP0003"}

	tally, err := NewSynchronizer(properties(5), store, Options{}).SyncAll(context.Background())
	var commitErr *BatchCommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, []string{"PROP0003"}, commitErr.Keys)
	assert.Equal(t, 1, commitErr.Uncommitted)
	assert.Equal(t, 4, tally.Synced)
}

type failingSource struct {
	records SliceSource
	err     error
}

func (s failingSource) Each(ctx context.Context, fn func(models.Property, error) error) error {
	if err := s.records.Each(ctx, fn); err != nil {
		return err
	}
	return s.err
}

// unreadableSource yields its records with one undecodable record at bad.
type unreadableSource struct {
	records SliceSource
	bad     int
}

func (s unreadableSource) Each(ctx context.Context, fn func(models.Property, error) error) error {
	for i, p := range s.records {
		if i == s.bad {
			if err := fn(models.Property{PropertyID: p.PropertyID}, errors.New("error decoding key images")); err != nil {
				return err
			}
			continue
		}
		if err := fn(p, nil); err != nil {
			return err
		}
	}
	return nil
}

func TestSyncAll_UnreadableRecordDoesNotStopRun(t *testing.T) {
	store := NewMemoryStore(2)
	src := unreadableSource{records: properties(5), bad: 2}

	tally, err := NewSynchronizer(src, store, Options{}).SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Synced: 4, Skipped: 0, Errored: 1}, tally)
	_, ok := store.Get("PROP0003")
	assert.False(t, ok)
	_, ok = store.Get("PROP0005")
	assert.True(t, ok)
}

func TestSyncAll_SourceFailure(t *testing.T) {
	src := failingSource{records: properties(2), err: errors.New("cursor killed")}

	_, err := NewSynchronizer(src, NewMemoryStore(0), Options{}).SyncAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read records")
	var commitErr *BatchCommitError
	assert.False(t, errors.As(err, &commitErr))
}

func TestSyncAll_ConcurrentRunsCoverEveryRecord(t *testing.T) {
	const n = 60
	store := NewMemoryStore(7)
	s := NewSynchronizer(properties(n), store, Options{Concurrency: 4})

	var (
		wg     sync.WaitGroup
		tallys [2]Tally
		errs   [2]error
	)
	for i := range tallys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tallys[i], errs[i] = s.SyncAll(context.Background())
		}()
	}
	wg.Wait()

	for i := range tallys {
		require.NoError(t, errs[i])
		assert.Equal(t, n, tallys[i].Synced+tallys[i].Skipped)
		assert.Zero(t, tallys[i].Errored)
	}
	assert.Equal(t, n, store.Len())
}

func TestNewDocument_MissingKey(t *testing.T) {
	_, err := NewDocument(models.Property{})
	assert.ErrorIs(t, err, ErrMissingKey)
}
