package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/docarray/blobstore"
)

// CurrentName is the base name of pointer blobs kept in DynamoDB.
const CurrentName = "CURRENT"

// DDBCommitStore implements blobstore.BlobStore backed by S3 with DynamoDB
// for atomic pointer commits. This enables safe concurrent writers.
//
// Every blob whose base name is CURRENT (for example "offset2id/CURRENT") is
// a pointer: Put appends a new version with a DynamoDB conditional write and
// Open returns the latest one. All other blobs go to S3.
//
// Table schema:
//   - Partition key: base_uri (string) - the S3 prefix plus the pointer directory
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name docarray-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	s3Store   blobstore.BlobStore
	ddbClient DDBClient
	tableName string
	baseURI   string // S3 bucket/prefix used as partition key
}

var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when a concurrent write is detected.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// NewDDBCommitStore creates a new S3+DynamoDB commit store.
// The baseURI should be "s3://bucket/prefix" format used as partition key.
func NewDDBCommitStore(s3Store blobstore.BlobStore, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		s3Store:   s3Store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

func isPointer(name string) bool {
	return path.Base(name) == CurrentName
}

func (s *DDBCommitStore) partition(name string) string {
	if dir := path.Dir(name); dir != "." {
		return s.baseURI + dir + "/"
	}
	return s.baseURI
}

// Open opens a blob for reading. Pointers are read from DynamoDB.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if !isPointer(name) {
		return s.s3Store.Open(ctx, name)
	}
	version, target, err := s.getLatestVersion(ctx, s.partition(name))
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return &virtualCurrentBlob{content: []byte(target)}, nil
}

// Put writes a blob. Pointers are committed with a DynamoDB conditional write.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if isPointer(name) {
		return s.commitVersion(ctx, s.partition(name), string(data))
	}
	return s.s3Store.Put(ctx, name, data)
}

// Create creates a writable blob. Pointers are committed on Close.
func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if isPointer(name) {
		return &pointerWriter{ctx: ctx, store: s, name: name}, nil
	}
	return s.s3Store.Create(ctx, name)
}

// Delete deletes a blob. Deleting a pointer removes its whole version history.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	if !isPointer(name) {
		return s.s3Store.Delete(ctx, name)
	}
	partition := s.partition(name)
	versions, err := s.versions(ctx, partition)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if _, err := s.ddbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"base_uri": &types.AttributeValueMemberS{Value: partition},
				"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(v, 10)},
			},
		}); err != nil {
			return fmt.Errorf("failed to delete version %d from DynamoDB: %w", v, err)
		}
	}
	return nil
}

// List lists blobs with prefix. Pointers are not listed.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.s3Store.List(ctx, prefix)
}

// getLatestVersion queries DynamoDB for the latest committed version.
func (s *DDBCommitStore) getLatestVersion(ctx context.Context, partition string) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: partition},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	version, err := parseVersion(item)
	if err != nil {
		return 0, "", err
	}
	target, ok := item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid target attribute in DynamoDB")
	}
	return version, target.Value, nil
}

// versions returns every committed version of a partition.
func (s *DDBCommitStore) versions(ctx context.Context, partition string) ([]uint64, error) {
	var (
		out   []uint64
		start map[string]types.AttributeValue
	)
	for {
		resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("base_uri = :uri"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uri": &types.AttributeValueMemberS{Value: partition},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range resp.Items {
			v, err := parseVersion(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			return out, nil
		}
		start = resp.LastEvaluatedKey
	}
}

func parseVersion(item map[string]types.AttributeValue) (uint64, error) {
	attr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid version attribute in DynamoDB")
	}
	v, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse version: %w", err)
	}
	return v, nil
}

// commitVersion atomically commits a new pointer version using a DynamoDB conditional write.
func (s *DDBCommitStore) commitVersion(ctx context.Context, partition, target string) error {
	currentVersion, _, err := s.getLatestVersion(ctx, partition)
	if err != nil {
		return err
	}

	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: partition},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(currentVersion+1, 10)},
			"target":   &types.AttributeValueMemberS{Value: target},
		},
		// Only succeed if this version doesn't exist yet.
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return nil
}

type pointerWriter struct {
	ctx   context.Context
	store *DDBCommitStore
	name  string
	buf   bytes.Buffer
}

func (w *pointerWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *pointerWriter) Sync() error                 { return nil }
func (w *pointerWriter) Close() error {
	return w.store.Put(w.ctx, w.name, w.buf.Bytes())
}

// virtualCurrentBlob is a simple in-memory blob for the pointer content.
type virtualCurrentBlob struct {
	content []byte
}

func (b *virtualCurrentBlob) Close() error {
	return nil
}

func (b *virtualCurrentBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *virtualCurrentBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *virtualCurrentBlob) ReadRange(_ context.Context, off, lenReq int64) (blobstore.ReadCloser, error) {
	if off >= int64(len(b.content)) {
		return blobstore.NopReadCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+lenReq, int64(len(b.content)))
	return blobstore.NopReadCloser(bytes.NewReader(b.content[off:end])), nil
}
