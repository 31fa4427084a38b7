package audiocache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dreaming-of-a-jet-plane/scanner/internal/config"
)

// metaCreatedAt is the object metadata key carrying the entry timestamp.
const metaCreatedAt = "Created-At"

// S3Store persists artifacts in S3-compatible object storage. The creation
// time rides along as object metadata so the Manager's lazy TTL check works
// the same as for the other backends.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store connects to the configured MinIO/S3 endpoint and ensures the
// bucket exists.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
		return nil, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	return &S3Store{client: client, bucket: cfg.MinioBucket}, nil
}

func (s *S3Store) Read(ctx context.Context, key string) (*Entry, error) {
	objectKey := s.objectKey(key)

	stat, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", objectKey, err)
	}

	createdAt, err := time.Parse(time.RFC3339, stat.UserMetadata[metaCreatedAt])
	if err != nil {
		// Unreadable timestamp means the entry is unusable; treat as absent
		return nil, nil
	}

	object, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", objectKey, err)
	}
	defer object.Close()

	audio, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", objectKey, err)
	}

	return &Entry{Audio: audio, CreatedAt: createdAt}, nil
}

func (s *S3Store) Write(ctx context.Context, key string, entry *Entry) error {
	objectKey := s.objectKey(key)

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		bytes.NewReader(entry.Audio),
		int64(len(entry.Audio)),
		minio.PutObjectOptions{
			ContentType:  "audio/mpeg",
			UserMetadata: map[string]string{metaCreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339)},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %s: %w", objectKey, err)
	}
	return nil
}

func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) objectKey(key string) string {
	return "audio/" + key + ".mp3"
}
