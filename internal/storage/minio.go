package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for an S3-compatible service.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioClient implements ObjectStorage for any S3-compatible backend.
type MinioClient struct {
	api    *minio.Client
	bucket string
}

var _ ObjectStorage = (*MinioClient)(nil)

// NewMinioClient validates the config and builds a client. No network call
// is made here; the first list/upload/delete dials the endpoint.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	endpoint, secure := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)

	api, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build storage client for %s: %w", endpoint, err)
	}

	return &MinioClient{
		api:    api,
		bucket: cfg.Bucket,
	}, nil
}

// ListObjects lists all objects for a given prefix.
func (c *MinioClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	results := make([]ObjectInfo, 0)
	for obj := range c.api.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %s/%s failed: %w", c.bucket, prefix, obj.Err)
		}
		// Skip the folder placeholder itself
		if obj.Key == prefix {
			continue
		}
		results = append(results, ObjectInfo{
			Key:  obj.Key,
			Size: obj.Size,
		})
	}
	return results, nil
}

// UploadObject writes data to the bucket under key.
func (c *MinioClient) UploadObject(ctx context.Context, key string, data []byte) error {
	_, err := c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("upload of %s/%s failed: %w", c.bucket, key, err)
	}
	return nil
}

// DeleteObject removes the object by key.
func (c *MinioClient) DeleteObject(ctx context.Context, key string) error {
	if err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete of %s/%s failed: %w", c.bucket, key, err)
	}
	return nil
}

// normalizeEndpoint strips an optional scheme prefix, which also decides TLS
// when present. minio.New wants host[:port], not a URL.
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return endpoint, useSSL
	}
}
