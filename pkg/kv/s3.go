package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ObjectAPI is the slice of the S3 client the backend uses.
// This interface allows for easy mocking in tests.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Ensure *s3.Client satisfies ObjectAPI
var _ ObjectAPI = (*s3.Client)(nil)

// S3Config configures the S3 backend.
type S3Config struct {
	Region string
	Bucket string
	Prefix string
	// MaxValueBytes caps a single object. Zero means no cap.
	MaxValueBytes int64
}

// S3Backend stores each key as an object under Prefix.
type S3Backend struct {
	client   ObjectAPI
	bucket   string
	prefix   string
	maxValue int64
}

// NewS3Backend loads the default AWS credential chain for the region.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3BackendWithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

// NewS3BackendWithClient wraps an existing client.
func NewS3BackendWithClient(client ObjectAPI, cfg S3Config) *S3Backend {
	return &S3Backend{
		client:   client,
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		maxValue: cfg.MaxValueBytes,
	}
}

func (b *S3Backend) objectKey(key string) string {
	if b.prefix == "" {
		return key + ".json"
	}
	return path.Join(b.prefix, key+".json")
}

func (b *S3Backend) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", key, err)
	}
	return data, nil
}

func (b *S3Backend) Set(ctx context.Context, key string, value []byte) error {
	if b.maxValue > 0 && int64(len(value)) > b.maxValue {
		return capacityExceeded("s3", key, nil)
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.objectKey(key)),
		Body:          bytes.NewReader(value),
		ContentLength: aws.Int64(int64(len(value))),
		ContentType:   aws.String("application/json"),
		CacheControl:  aws.String("no-cache"),
	})
	if err != nil {
		if hasAPIErrorCode(err, "EntityTooLarge") {
			return capacityExceeded("s3", key, err)
		}
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func (b *S3Backend) Remove(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (b *S3Backend) Close() error {
	return nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	return hasAPIErrorCode(err, "NoSuchKey") || hasAPIErrorCode(err, "NotFound")
}

func hasAPIErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
