package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/docarray/blobstore"
)

// Options configures a Store.
type Options struct {
	// Prefix is prepended to all keys.
	Prefix string
	// Region overrides the region of the default AWS config.
	Region string
	// Endpoint overrides the S3 endpoint (LocalStack, S3-compatible gateways).
	Endpoint string
	// UsePathStyle addresses buckets by path instead of virtual host.
	UsePathStyle bool
	Upload       UploadConfig
}

// WithPrefix sets the root key prefix.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) func(*Options) {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint points the client at a custom endpoint and enables path-style
// addressing.
func WithEndpoint(endpoint string) func(*Options) {
	return func(o *Options) {
		o.Endpoint = endpoint
		o.UsePathStyle = true
	}
}

// WithUploadConfig overrides the upload settings.
func WithUploadConfig(cfg UploadConfig) func(*Options) {
	return func(o *Options) { o.Upload = cfg }
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	upload   UploadConfig
	uploader *manager.Uploader
}

var (
	_ blobstore.BlobStore    = (*Store)(nil)
	_ blobstore.BatchDeleter = (*Store)(nil)
)

// maxDeleteBatch is the key limit of one DeleteObjects request.
const maxDeleteBatch = 1000

// New creates a Store from the default AWS configuration chain.
func New(ctx context.Context, bucket string, optFns ...func(*Options)) (*Store, error) {
	opts := Options{Upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return newStore(cfg, bucket, opts), nil
}

// NewCommitStore creates a DDBCommitStore whose pointer versions live in the
// DynamoDB table and whose blobs live in bucket. Both clients share the
// default AWS configuration chain.
func NewCommitStore(ctx context.Context, bucket, table string, optFns ...func(*Options)) (*DDBCommitStore, error) {
	opts := Options{Upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	baseURI := "s3://" + bucket + "/" + strings.TrimSuffix(opts.Prefix, "/")
	if !strings.HasSuffix(baseURI, "/") {
		baseURI += "/"
	}
	return NewDDBCommitStore(newStore(cfg, bucket, opts), dynamodb.NewFromConfig(cfg), table, baseURI), nil
}

func loadConfig(ctx context.Context, opts Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}

func newStore(cfg aws.Config, bucket string, opts Options) *Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return NewStoreWithConfig(client, bucket, opts.Prefix, opts.Upload)
}

// NewStore creates a new S3 blob store with the default upload settings.
// rootPrefix is prepended to all keys (e.g. "collections/books/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return NewStoreWithConfig(client, bucket, rootPrefix, DefaultUploadConfig())
}

// NewStoreWithConfig creates a new S3 blob store with explicit upload settings.
func NewStoreWithConfig(client Client, bucket, rootPrefix string, cfg UploadConfig) *Store {
	if rootPrefix != "" && !strings.HasSuffix(rootPrefix, "/") {
		rootPrefix += "/"
	}
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   rootPrefix,
		upload:   cfg,
		uploader: newUploader(client, cfg),
	}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Put writes a blob atomically. Blobs up to one part are sent in a single
// PutObject request, larger ones as a multipart upload.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if int64(len(data)) <= s.upload.PartSize {
		if s.upload.EnableChecksum {
			return putWithChecksum(ctx, s.client, s.bucket, s.key(name), data)
		}
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(s.key(name)),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		})
		return err
	}
	_, err := s.uploader.Upload(ctx, s.putInput(name, bytes.NewReader(data)))
	return err
}

func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return newStreamingWritableBlob(ctx, s.uploader, s.putInput(name, nil)), nil
}

// Delete removes a blob. S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// DeleteMany removes names with DeleteObjects requests of up to 1000 keys.
func (s *Store) DeleteMany(ctx context.Context, names []string) error {
	var errs []error
	for batch := range slices.Chunk(names, maxDeleteBatch) {
		objects := make([]types.ObjectIdentifier, len(batch))
		for i, n := range batch {
			objects[i] = types.ObjectIdentifier{Key: aws.String(s.key(n))}
		}
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return err
		}
		for _, e := range out.Errors {
			if aws.ToString(e.Code) == "NoSuchKey" {
				continue
			}
			errs = append(errs, fmt.Errorf("s3: delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
