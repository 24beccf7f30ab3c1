// Package s3 implements blob storage on an S3 or S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ade-bello/filedepot/internal/files"
)

// Storage implements files.BlobStorage on an S3 bucket. Storage paths are
// object keys; size-variant suffixes compose with keys the same way they do
// with filesystem paths.
type Storage struct {
	client *awss3.Client
	bucket string
	prefix string
}

// Config holds S3 storage options.
type Config struct {
	// Bucket is the bucket name. It must already exist.
	Bucket string

	// Region is the AWS region. Empty falls back to the SDK default chain.
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible stores
	// (MinIO, Localstack). Path-style addressing is enabled when set.
	Endpoint string

	// AccessKey and SecretKey configure static credentials. Empty falls
	// back to the SDK default chain.
	AccessKey string
	SecretKey string

	// KeyPrefix is an optional prefix for all object keys.
	KeyPrefix string
}

// NewStorage creates the storage and verifies bucket access.
func NewStorage(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &Storage{client: client, bucket: cfg.Bucket, prefix: cfg.KeyPrefix}, nil
}

// Save writes content under the given object name and returns its key.
func (s *Storage) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(s.prefix, name)
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return key, nil
}

// Open returns a reader for the object at key.
func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, files.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	return out.Body, nil
}
