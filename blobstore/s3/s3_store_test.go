package s3

import (
	"context"
	"crypto/rand"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docarray/blobstore"
	"github.com/hupe1980/docarray/storage"
	"github.com/hupe1980/docarray/storage/remote"
	"github.com/hupe1980/docarray/storage/storagetest"
)

// newIntegrationStore returns a store below a fresh prefix of S3_BUCKET,
// or skips when the variable is unset.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("S3_BUCKET not set")
	}
	opts := []func(*Options){WithPrefix("it-" + uuid.NewString())}
	if ep := os.Getenv("S3_ENDPOINT"); ep != "" {
		opts = append(opts, WithEndpoint(ep))
	}
	store, err := New(context.Background(), bucket, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		names, _ := store.List(context.Background(), "")
		_ = store.DeleteMany(context.Background(), names)
	})
	return store
}

func TestIntegration_Store(t *testing.T) {
	ctx := context.Background()
	store := newIntegrationStore(t)

	data := make([]byte, 1<<20)
	_, _ = rand.Read(data)

	w, err := store.Create(ctx, "docs/big")
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err := store.Open(ctx, "docs/big")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), b.Size())
	buf := make([]byte, 100)
	_, err = b.ReadAt(ctx, buf, 1024)
	require.NoError(t, err)
	assert.Equal(t, data[1024:1124], buf)
	require.NoError(t, b.Close())

	require.NoError(t, store.DeleteMany(ctx, []string{"docs/big"}))
	_, err = store.Open(ctx, "docs/big")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestIntegration_RemoteConformance(t *testing.T) {
	store := newIntegrationStore(t)
	storagetest.Run(t, func(t *testing.T) storage.PayloadStore {
		return remote.NewStore(remote.NewHandle(store, uuid.NewString(), false))
	})
}
