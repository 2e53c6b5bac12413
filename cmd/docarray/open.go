package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/docarray"
	"github.com/hupe1980/docarray/blobstore"
	minioblob "github.com/hupe1980/docarray/blobstore/minio"
	s3blob "github.com/hupe1980/docarray/blobstore/s3"
	"github.com/hupe1980/docarray/codec"
	"github.com/hupe1980/docarray/storage"
	"github.com/hupe1980/docarray/storage/bolt"
	"github.com/hupe1980/docarray/storage/remote"
)

func (c Config) logger() *docarray.Logger {
	if c.LogFormat == "json" {
		return docarray.NewJSONLogger(c.logLevel())
	}
	return docarray.NewTextLogger(c.logLevel())
}

func (c Config) storageOptions(logger *docarray.Logger) []func(*storage.Options) {
	opts := []func(*storage.Options){storage.WithLogger(logger.Logger)}
	if c.RepairOnLoad {
		opts = append(opts, storage.WithRepairOnLoad())
	}
	return opts
}

// blobStore builds the object store of the remote backends.
func (c Config) blobStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch c.Backend {
	case BackendLocal:
		return blobstore.NewLocalStore(c.Path), nil
	case BackendS3:
		var opts []func(*s3blob.Options)
		if c.S3.Prefix != "" {
			opts = append(opts, s3blob.WithPrefix(c.S3.Prefix))
		}
		if c.S3.Region != "" {
			opts = append(opts, s3blob.WithRegion(c.S3.Region))
		}
		if c.S3.Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(c.S3.Endpoint))
		}
		if c.S3.CommitTable != "" {
			return s3blob.NewCommitStore(ctx, c.S3.Bucket, c.S3.CommitTable, opts...)
		}
		return s3blob.New(ctx, c.S3.Bucket, opts...)
	case BackendMinio:
		client, err := minio.New(c.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
			Secure: c.Minio.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		store := minioblob.NewStore(client, c.Minio.Bucket, c.Minio.Prefix)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("backend %s has no blob store", c.Backend)
}

// openArray opens the configured collection. The caller closes it.
func openArray(ctx context.Context, c Config) (*docarray.DocumentArray, error) {
	logger := c.logger().WithCollection(c.Collection)

	var compression codec.Compression
	if c.Compression != "" {
		var err error
		if compression, err = codec.ParseCompression(c.Compression); err != nil {
			return nil, err
		}
	}

	var (
		b   *storage.Base
		err error
	)
	switch c.Backend {
	case BackendBolt:
		opts := []func(*bolt.Options){
			bolt.WithCollection(c.Collection),
			bolt.WithStorageOptions(c.storageOptions(logger)...),
		}
		if c.Compression != "" {
			opts = append(opts, bolt.WithCompression(compression))
		}
		b, err = bolt.New(ctx, c.Path, opts...)
	default:
		store, serr := c.blobStore(ctx)
		if serr != nil {
			return nil, serr
		}
		opts := []func(*remote.Options){
			remote.WithBlobStore(store, true),
			remote.WithStorageOptions(c.storageOptions(logger)...),
		}
		if c.Compression != "" {
			opts = append(opts, remote.WithFrame(codec.NewFrame(func(f *codec.Frame) { f.Compression = compression })))
		}
		if c.CacheBytes > 0 {
			opts = append(opts, remote.WithCache(c.CacheBytes))
		}
		b, err = remote.New(ctx, c.Collection, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s collection %q: %w", c.Backend, c.Collection, err)
	}
	return docarray.New(b, docarray.WithLogger(logger)), nil
}

// collections lists the collection names stored by the configured backend.
func collections(ctx context.Context, c Config) ([]string, error) {
	if c.Backend == BackendBolt {
		if _, err := os.Stat(c.Path); err != nil {
			return nil, err
		}
		return bolt.Collections(c.Path)
	}

	store, err := c.blobStore(ctx)
	if err != nil {
		return nil, err
	}
	names, err := store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		coll, _, ok := strings.Cut(name, "/")
		if ok && !slices.Contains(out, coll) {
			out = append(out, coll)
		}
	}
	slices.Sort(out)
	return out, nil
}
