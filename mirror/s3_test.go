package mirror

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut map[string]bool
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, failPut: map[string]bool{}}
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut[*in.Key] {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Sync(t *testing.T) {
	fake := newFakeS3()
	store := NewS3StoreWithClient(fake, "backup", "mirror", 0)
	s := NewSynchronizer(properties(3), store, Options{})

	tally, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Synced: 3}, tally)
	assert.Contains(t, fake.objects, "mirror/PROP0001.json")
	assert.Contains(t, string(fake.objects["mirror/PROP0002.json"]), `"firestoreSynced":true`)

	tally, err = s.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Skipped: 3}, tally)
}

func TestS3Store_PartialCommit(t *testing.T) {
	fake := newFakeS3()
	fake.failPut["properties/PROP0002.json"] = true
	store := NewS3StoreWithClient(fake, "backup", "", 0)

	tally, err := NewSynchronizer(properties(3), store, Options{}).SyncAll(context.Background())
	var commitErr *BatchCommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, []string{"PROP0002"}, commitErr.Keys)
	assert.Equal(t, 2, tally.Synced)
}

func TestS3Store_HeadErrorIsNotAbsence(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("throttled")
	store := NewS3StoreWithClient(fake, "backup", "", 0)

	_, err := store.Exists(context.Background(), "PROP0001")
	assert.Error(t, err)

	tally, err := NewSynchronizer(properties(2), store, Options{}).SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tally{Errored: 2}, tally)
}
