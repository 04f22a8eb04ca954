// Package s3 provides an S3/MinIO storage backend. Keys have the form
// "bucket/object/key".
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/pagetranslate/pagetranslate/internal/logging"
	"github.com/pagetranslate/pagetranslate/internal/metrics"
)

// Config holds S3 connection settings. Empty credentials fall back to the
// default AWS credential chain.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// S3Backend implements storage.Backend using S3/MinIO.
type S3Backend struct {
	client *s3.Client
}

// NewBackend creates a new S3 backend.
func NewBackend(ctx context.Context, cfg Config) (*S3Backend, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Backend{client: client}, nil
}

// SplitKey splits "bucket/object/key" into bucket and object key.
func SplitKey(key string) (bucket, object string, err error) {
	key = strings.TrimPrefix(key, "/")
	bucket, object, ok := strings.Cut(key, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid s3 key %q: want bucket/key", key)
	}
	return bucket, object, nil
}

// ReadObject downloads a whole object.
func (b *S3Backend) ReadObject(ctx context.Context, key string) ([]byte, error) {
	bucket, object, err := SplitKey(key)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		metrics.RecordStorageOperation("s3", "read", time.Since(start), false)
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	metrics.RecordStorageOperation("s3", "read", time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// WriteObject uploads data, replacing any existing object.
func (b *S3Backend) WriteObject(ctx context.Context, key string, data []byte) error {
	bucket, object, err := SplitKey(key)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(object),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		metrics.RecordStorageOperation("s3", "write", time.Since(start), false)
		return fmt.Errorf("put object %s: %w", key, err)
	}

	metrics.RecordStorageOperation("s3", "write", time.Since(start), true)
	logging.Debug("S3 put object", zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

// Type returns "s3".
func (b *S3Backend) Type() string {
	return "s3"
}

// Close is a no-op; the SDK client holds no releasable resources.
func (b *S3Backend) Close() error {
	return nil
}
