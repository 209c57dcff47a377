package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/satenders/tender-indexer/internal/logger"
)

// ObjectStoreConfig holds S3-compatible object store settings.
// BaseEndpoint is optional and allows pointing at MinIO in development.
type ObjectStoreConfig struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// ObjectStore defines an interface for raw payload storage to enable mocking
//
//go:generate mockgen -source=objectstore.go -destination=../mocks/objectstore.go -package=mocks -mock_names=ObjectStore=MockObjectStore
type ObjectStore interface {
	// GetObject fetches the full body of an object
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	// PutObject stores an object with optional metadata
	PutObject(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) error
}

type s3ObjectStore struct {
	client *s3.Client
}

// NewObjectStore creates an S3-backed object store
func NewObjectStore(ctx context.Context, cfg ObjectStoreConfig) (ObjectStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &s3ObjectStore{client: client}, nil
}

func (s *s3ObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	defer func() {
		if err := out.Body.Close(); err != nil {
			logger.Warn("failed to close object body", zap.Error(err), zap.String("key", key))
		}
	}()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}

	return body, nil
}

func (s *s3ObjectStore) PutObject(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(body),
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s/%s: %w", bucket, key, err)
	}

	return nil
}
