package minio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

const avatarContentType = "image/png"

// AvatarMinio stores per-user avatars in an S3-compatible bucket under
// avatars/<user_id>.png.
type AvatarMinio struct {
	client *minio.Client
	bucket string
}

func NewAvatarMinio(client *minio.Client, bucket string) repositories.AvatarRepository {
	return &AvatarMinio{client: client, bucket: bucket}
}

func (s *AvatarMinio) objectName(userID uint) string {
	return fmt.Sprintf("avatars/%d.png", userID)
}

func (s *AvatarMinio) Exists(ctx context.Context, userID uint) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.objectName(userID), minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat avatar: %w", err)
	}
	return true, nil
}

func (s *AvatarMinio) Upload(ctx context.Context, userID uint, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.objectName(userID), r, size, minio.PutObjectOptions{
		ContentType: avatarContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload avatar: %w", err)
	}
	return nil
}

func (s *AvatarMinio) Download(ctx context.Context, userID uint) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectName(userID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}

	// GetObject is lazy; Stat forces the first round-trip so a missing
	// object surfaces here instead of at first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat avatar: %w", err)
	}

	return obj, nil
}

func (s *AvatarMinio) Delete(ctx context.Context, userID uint) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.objectName(userID), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
