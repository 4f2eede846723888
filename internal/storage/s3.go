package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/config"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const s3StagingPrefix = "staging/"

type s3Stager struct {
	client     *minio.Client
	bucketName string
	now        func() time.Time
}

// NewS3Stager stages uploads as objects in an S3-compatible bucket, creating
// the bucket if it does not exist.
func NewS3Stager(ctx context.Context, cfg *config.Config) (Stager, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.S3BucketName, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &s3Stager{
		client:     client,
		bucketName: cfg.S3BucketName,
		now:        time.Now,
	}, nil
}

func (s *s3Stager) Stage(ctx context.Context, r io.Reader, size int64, filename, contentType string) (Staged, error) {
	key := s3StagingPrefix + utils.StagedName(filename, s.now())

	info, err := s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Staged{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return Staged{
		Key:          key,
		OriginalName: filename,
		ContentType:  contentType,
		Size:         info.Size,
	}, nil
}

func (s *s3Stager) Read(ctx context.Context, staged Staged) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucketName, staged.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(object); err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return buf.Bytes(), nil
}

// Remove deletes the staged object. S3 reports success for missing keys.
func (s *s3Stager) Remove(ctx context.Context, staged Staged) error {
	err := s.client.RemoveObject(ctx, s.bucketName, staged.Key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *s3Stager) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to reach S3: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}
