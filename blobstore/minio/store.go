package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/docarray/blobstore"
)

// FrameContentType is the content type of stored document frames.
const FrameContentType = "application/vnd.docarray.frame"

// Options configures a Store.
type Options struct {
	// Prefix is prepended to every blob name.
	Prefix string
	// ContentType is set on uploaded objects.
	ContentType string
	// PartSize is the multipart part size of streamed uploads. Zero lets the
	// client choose.
	PartSize uint64
	// Region is used when EnsureBucket creates the bucket.
	Region string
}

// DefaultOptions contains the default Store options.
var DefaultOptions = Options{
	ContentType: FrameContentType,
}

// WithPrefix scopes the store below prefix.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) { o.Prefix = prefix }
}

// WithPartSize sets the multipart part size of streamed uploads.
func WithPartSize(n uint64) func(*Options) {
	return func(o *Options) { o.PartSize = n }
}

// WithRegion sets the region used when creating the bucket.
func WithRegion(region string) func(*Options) {
	return func(o *Options) { o.Region = region }
}

// Store implements blobstore.BlobStore on a MinIO (or S3-compatible)
// bucket.
type Store struct {
	client *minio.Client
	bucket string
	opts   Options
}

var (
	_ blobstore.BlobStore    = (*Store)(nil)
	_ blobstore.BatchDeleter = (*Store)(nil)
)

// NewStore returns a store on bucket. rootPrefix may be empty; a trailing
// "/" is added otherwise.
func NewStore(client *minio.Client, bucket, rootPrefix string, optFns ...func(*Options)) *Store {
	opts := DefaultOptions
	opts.Prefix = rootPrefix
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Prefix != "" && !strings.HasSuffix(opts.Prefix, "/") {
		opts.Prefix += "/"
	}
	return &Store{client: client, bucket: bucket, opts: opts}
}

// EnsureBucket creates the bucket unless it exists.
func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio: bucket %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.opts.Region})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return fmt.Errorf("minio: create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) key(name string) string { return s.opts.Prefix + name }

func (s *Store) putOptions() minio.PutObjectOptions {
	return minio.PutObjectOptions{ContentType: s.opts.ContentType, PartSize: s.opts.PartSize}
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Open stats the object and returns a ranged reader over it.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
		}
		return nil, err
	}
	return &blob{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), s.putOptions())
	return err
}

// Create streams an upload of unknown size. The object becomes visible on
// Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	w := &writer{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, s.putOptions())
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Delete removes one object. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// DeleteMany removes names with multi-object delete requests.
func (s *Store) DeleteMany(ctx context.Context, names []string) error {
	objects := make(chan minio.ObjectInfo)
	go func() {
		defer close(objects)
		for _, n := range names {
			select {
			case objects <- minio.ObjectInfo{Key: s.key(n)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errs []error
	for res := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && !isNotFound(res.Err) {
			errs = append(errs, fmt.Errorf("minio: delete %s: %w", res.ObjectName, res.Err))
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// List returns the names below prefix, relative to the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name := strings.TrimPrefix(obj.Key, s.opts.Prefix); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
