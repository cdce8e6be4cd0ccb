package s3

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/cabaliser/blobstore"
	"github.com/hupe1980/cabaliser/internal/hash"
)

// UploadConfig configures streaming uploads.
type UploadConfig struct {
	// PartSize is the multipart part size. Snapshots below it go up in a
	// single PutObject. Default 8 MiB.
	PartSize int64
	// Concurrency is the number of parts in flight. Default 4.
	Concurrency int
	// Checksum asks S3 to verify a CRC32C of every part. Default true.
	Checksum bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 << 20,
		Concurrency: 4,
		Checksum:    true,
	}
}

func (c UploadConfig) uploader(client Client) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if c.PartSize > 0 {
			u.PartSize = c.PartSize
		}
		if c.Concurrency > 0 {
			u.Concurrency = c.Concurrency
		}
	})
}

// uploadWriter feeds an upload running in the background through a pipe.
type uploadWriter struct {
	pw   *io.PipeWriter
	done chan error

	mu     sync.Mutex
	closed bool
	err    error
}

func startUpload(ctx context.Context, client Client, cfg UploadConfig, bucket, key string) *uploadWriter {
	pr, pw := io.Pipe()
	w := &uploadWriter{pw: pw, done: make(chan error, 1)}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        pr,
		ContentType: aws.String(blobstore.ContentType(key)),
	}
	if cfg.Checksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	go func() {
		_, err := cfg.uploader(client).Upload(ctx, input)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}
	return w.pw.Write(p)
}

// finish ends the body with cause (nil for EOF) and waits for the upload.
func (w *uploadWriter) finish(cause error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.err
	}
	w.closed = true
	_ = w.pw.CloseWithError(cause)
	w.err = <-w.done
	return w.err
}

// Close completes the upload.
func (w *uploadWriter) Close() error { return w.finish(nil) }

// Abort cancels the upload; the upload manager removes uploaded parts.
func (w *uploadWriter) Abort() error {
	_ = w.finish(context.Canceled)
	return nil
}

// Sync is a no-op; the object appears on Close.
func (w *uploadWriter) Sync() error { return nil }

// put writes small blobs such as CURRENT in one request with a CRC32C.
func put(ctx context.Context, client Client, bucket, key string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ContentType:    aws.String(blobstore.ContentType(key)),
		ChecksumCRC32C: aws.String(hash.CRC32CBase64(data)),
	})
	return err
}
