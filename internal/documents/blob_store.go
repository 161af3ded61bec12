package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/somnolink/somnolink/pkg/logging"
)

// S3API is the subset of the S3 client used by BlobStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// BlobStore writes document blobs to S3. If bucket is empty the store is
// disabled and uploads are refused.
type BlobStore struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewBlobStore creates a blob store. bucket may be empty.
func NewBlobStore(s3Client S3API, bucket string, logger *logging.Logger) *BlobStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &BlobStore{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled reports whether blob storage is configured.
func (s *BlobStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Put uploads a blob under the given key.
func (s *BlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if !s.Enabled() {
		return ErrStorageDisabled
	}
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("documents: s3 put %s: %w", key, err)
	}
	return nil
}

// Get downloads a blob.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrStorageDisabled
	}
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("documents: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("documents: read s3 body: %w", err)
	}
	return data, nil
}

// Delete removes a blob. Missing keys are not an error.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrStorageDisabled
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("documents: s3 delete %s: %w", key, err)
	}
	return nil
}
