package purge

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npratama/bucketops/internal/storage"
)

type fakeStore struct {
	objects    map[string][]byte
	failDelete map[string]error
	listErr    error
}

func newFakeStore(keys ...string) *fakeStore {
	s := &fakeStore{
		objects:    make(map[string][]byte),
		failDelete: make(map[string]error),
	}
	for _, k := range keys {
		s.objects[k] = []byte("content")
	}
	return s
}

func (s *fakeStore) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []storage.ObjectInfo
	for _, k := range keys {
		out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(s.objects[k]))})
	}
	return out, nil
}

func (s *fakeStore) UploadObject(ctx context.Context, key string, data []byte) error {
	s.objects[key] = data
	return nil
}

func (s *fakeStore) DeleteObject(ctx context.Context, key string) error {
	if err, ok := s.failDelete[key]; ok {
		return err
	}
	delete(s.objects, key)
	return nil
}

func TestDeleteFolderEmpty(t *testing.T) {
	sum, err := DeleteFolder(context.Background(), newFakeStore(), "old_data")

	require.NoError(t, err)
	assert.Equal(t, 0, sum.Deleted)
	assert.Equal(t, 0, sum.Failed)
	assert.Empty(t, sum.Results)
}

func TestDeleteFolderListError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("bucket unreachable")

	_, err := DeleteFolder(context.Background(), store, "old_data")
	assert.ErrorContains(t, err, "bucket unreachable")
}

func TestDeleteFolder(t *testing.T) {
	store := newFakeStore("old_data/report1.pdf", "old_data/report2.pdf")

	sum, err := DeleteFolder(context.Background(), store, "old_data")

	require.NoError(t, err)
	assert.Equal(t, 2, sum.Deleted)
	assert.Equal(t, 0, sum.Failed)
	assert.Empty(t, store.objects)
}

func TestDeleteFolderNormalizesFolder(t *testing.T) {
	// Leading and trailing slashes on the folder argument must not change
	// which objects are listed.
	for _, folder := range []string{"/old_data", "old_data/", "/old_data/"} {
		store := newFakeStore("old_data/report1.pdf", "old_data/report2.pdf")

		sum, err := DeleteFolder(context.Background(), store, folder)

		require.NoError(t, err)
		assert.Equal(t, 2, sum.Deleted, "folder %q", folder)
		assert.Empty(t, store.objects)
	}
}

func TestDeleteFolderIsolatesFailures(t *testing.T) {
	store := newFakeStore("old_data/a.pdf", "old_data/b.pdf", "old_data/c.pdf")
	store.failDelete["old_data/b.pdf"] = errors.New("rejected by backend")

	sum, err := DeleteFolder(context.Background(), store, "old_data")

	require.NoError(t, err)
	assert.Equal(t, 2, sum.Deleted)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Results, 3, "every object must be attempted")

	assert.Contains(t, store.objects, "old_data/b.pdf")
	assert.NotContains(t, store.objects, "old_data/a.pdf")
	assert.NotContains(t, store.objects, "old_data/c.pdf")

	var failedKeys []string
	for _, r := range sum.Results {
		if r.Err != nil {
			failedKeys = append(failedKeys, r.Key)
		}
	}
	assert.Equal(t, []string{"old_data/b.pdf"}, failedKeys)
}

func TestDeleteFolderIsIdempotent(t *testing.T) {
	store := newFakeStore("old_data/report1.pdf")

	first, err := DeleteFolder(context.Background(), store, "old_data")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Deleted)

	// Re-running against the now-empty folder is a reported no-op.
	second, err := DeleteFolder(context.Background(), store, "old_data")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Deleted)
	assert.Equal(t, 0, second.Failed)
}
