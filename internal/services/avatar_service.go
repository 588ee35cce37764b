package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

type avatarService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAvatarService(repo repositories.Repository, logger *slog.Logger) AvatarService {
	return &avatarService{repo: repo, logger: logger}
}

// authorizeSelf enforces the strict self-only rule: not even admins may
// touch another user's avatar.
func (s *avatarService) authorizeSelf(userID uint, requester *models.User) error {
	if requester == nil || requester.ID != userID {
		return ErrNoPermission
	}
	return nil
}

func (s *avatarService) Upload(ctx context.Context, userID uint, requester *models.User, r io.Reader, size int64) error {
	if err := s.authorizeSelf(userID, requester); err != nil {
		return err
	}
	if size <= 0 {
		return ErrInvalidRequest
	}

	if err := s.repo.Avatar().Upload(ctx, userID, r, size); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}

	s.logger.Info("avatar uploaded", "user_id", userID, "size", size)
	return nil
}

func (s *avatarService) Download(ctx context.Context, userID uint, requester *models.User) (io.ReadCloser, error) {
	if err := s.authorizeSelf(userID, requester); err != nil {
		return nil, err
	}

	rc, err := s.repo.Avatar().Download(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to fetch avatar: %w", err)
	}
	return rc, nil
}

func (s *avatarService) Delete(ctx context.Context, userID uint, requester *models.User) error {
	if err := s.authorizeSelf(userID, requester); err != nil {
		return err
	}

	exists, err := s.repo.Avatar().Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check avatar: %w", err)
	}
	if !exists {
		return ErrAvatarNotFound
	}

	if err := s.repo.Avatar().Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}

	s.logger.Info("avatar deleted", "user_id", userID)
	return nil
}
