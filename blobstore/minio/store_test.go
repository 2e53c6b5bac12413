package minio

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docarray/blobstore"
	"github.com/hupe1980/docarray/storage"
	"github.com/hupe1980/docarray/storage/remote"
	"github.com/hupe1980/docarray/storage/storagetest"
)

// newTestStore connects to MINIO_ENDPOINT (default localhost:9000) and
// skips the test when no server answers.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("minio client: %v", err)
	}
	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("minio not available: %v", err)
	}

	s := NewStore(client, "test-docarray", "it-"+uuid.NewString())
	require.NoError(t, s.EnsureBucket(ctx))
	t.Cleanup(func() {
		names, _ := s.List(context.Background(), "")
		_ = s.DeleteMany(context.Background(), names)
	})
	return s
}

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	data := []byte("hello minio world")
	require.NoError(t, s.Put(ctx, "docs/a", data))

	got, err := blobstore.ReadAll(ctx, s, "docs/a")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	b, err := s.Open(ctx, "docs/a")
	require.NoError(t, err)
	buf := make([]byte, 5)
	n, err := b.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf[:n]))
	require.NoError(t, b.Close())

	w, err := s.Create(ctx, "offset2id/00000000000000000001")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Error(t, w.Close())

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a", "offset2id/00000000000000000001"}, names)

	require.NoError(t, s.DeleteMany(ctx, append(names, "docs/missing")))
	_, err = s.Open(ctx, "docs/a")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "docs/a"))
}

func TestStore_RemoteConformance(t *testing.T) {
	s := newTestStore(t)
	storagetest.Run(t, func(t *testing.T) storage.PayloadStore {
		return remote.NewStore(remote.NewHandle(s, uuid.NewString(), false))
	})
}

func TestNewStore_Options(t *testing.T) {
	s := NewStore(nil, "bucket", "collections/books")
	assert.Equal(t, "collections/books/docs/d0", s.key("docs/d0"))
	assert.Equal(t, FrameContentType, s.putOptions().ContentType)

	s = NewStore(nil, "bucket", "", WithPartSize(16<<20), WithRegion("eu-central-1"))
	assert.Equal(t, "docs/d0", s.key("docs/d0"))
	assert.Equal(t, uint64(16<<20), s.putOptions().PartSize)
	assert.Equal(t, "eu-central-1", s.opts.Region)

	s = NewStore(nil, "bucket", "", WithPrefix("p"))
	assert.Equal(t, "p/x", s.key("x"))
}
