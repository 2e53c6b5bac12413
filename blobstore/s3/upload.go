package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// UploadConfig configures the S3 uploader.
type UploadConfig struct {
	// PartSize is the minimum part size for multipart uploads. Put sends
	// blobs up to this size in a single request.
	// Default: 8MB
	PartSize int64

	// Concurrency is the number of concurrent part uploads.
	// Default: 5 (matches SDK default)
	Concurrency int

	// EnableChecksum enables CRC32C integrity validation.
	// Default: true
	EnableChecksum bool

	// LeavePartsOnError controls whether failed multipart uploads
	// are automatically aborted.
	// Default: false (abort on error)
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:          8 * 1024 * 1024,
		Concurrency:       5,
		EnableChecksum:    true,
		LeavePartsOnError: false,
	}
}

// newUploader creates a configured S3 uploader.
func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize >= manager.MinUploadPartSize {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

func (s *Store) putInput(name string, body io.Reader) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   body,
	}
	if s.upload.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	return input
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// computeCRC32C returns the base64 big-endian CRC32C S3 expects in
// ChecksumCRC32C.
func computeCRC32C(data []byte) string {
	b := binary.BigEndian.AppendUint32(nil, crc32.Checksum(data, castagnoli))
	return base64.StdEncoding.EncodeToString(b)
}

// streamingWritableBlob streams writes into a background upload through a pipe.
type streamingWritableBlob struct {
	pw   *io.PipeWriter
	done chan error

	closeMu  sync.Mutex
	closed   bool
	closeErr error
}

func newStreamingWritableBlob(ctx context.Context, uploader *manager.Uploader, input *s3.PutObjectInput) *streamingWritableBlob {
	pr, pw := io.Pipe()
	input.Body = pr

	blob := &streamingWritableBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		_, err := uploader.Upload(ctx, input)
		// Unblock writers if the upload failed early.
		_ = pr.CloseWithError(err)
		blob.done <- err
	}()

	return blob
}

func (b *streamingWritableBlob) Write(p []byte) (int, error) {
	b.closeMu.Lock()
	closed := b.closed
	b.closeMu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}
	return b.pw.Write(p)
}

// Close finishes the upload and waits for it. Calling Close again returns the
// first result.
func (b *streamingWritableBlob) Close() error {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()

	if b.closed {
		return b.closeErr
	}
	b.closed = true

	if err := b.pw.Close(); err != nil {
		b.closeErr = err
		return err
	}

	b.closeErr = <-b.done
	return b.closeErr
}

// Abort cancels the upload. The uploader aborts a started multipart upload
// unless LeavePartsOnError is set.
func (b *streamingWritableBlob) Abort() error {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	_ = b.pw.CloseWithError(context.Canceled)
	b.closeErr = <-b.done
	return nil
}

// Sync is a no-op for S3 uploads; data is only committed on Close.
func (b *streamingWritableBlob) Sync() error {
	return nil
}

// putWithChecksum uploads a small blob with CRC32C integrity validation.
func putWithChecksum(ctx context.Context, client Client, bucket, key string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ChecksumCRC32C: aws.String(computeCRC32C(data)),
	})
	return err
}
