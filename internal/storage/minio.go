package storage

import (
	"bytes"
	"context"
	"fmt"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig locates an S3-compatible bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Prefix is prepended to every key.
	Prefix string
}

// MinIOStore keeps thumbnails in an S3-compatible bucket.
type MinIOStore struct {
	client *miniogo.Client
	bucket string
	prefix string
}

// NewMinIOStore connects to the endpoint. It does not touch the network
// until EnsureBucket or the first operation.
func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *MinIOStore) Name() string {
	return "minio"
}

// EnsureBucket creates the bucket when it does not exist.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *MinIOStore) object(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *MinIOStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.object(key), bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return fmt.Errorf("upload thumbnail %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if ok, err := s.Exists(ctx, key); err == nil && !ok {
		return ErrNotFound
	}
	if err := s.client.RemoveObject(ctx, s.bucket, s.object(key), miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete thumbnail %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.object(key), miniogo.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if miniogo.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat thumbnail %s: %w", key, err)
}
