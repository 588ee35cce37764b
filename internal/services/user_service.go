package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.User().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id uint, requester *models.User) (*UserDetail, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if requester == nil {
		return nil, ErrNoPermission
	}
	if requester.Role != models.RoleAdmin && requester.Sub != user.Sub {
		return nil, NewPermissionError(requester.ID, "user", "read", "not admin or owner")
	}

	// Optional enrichment: a blob store outage must not take down an
	// unrelated user read, so the error is logged and swallowed here and
	// only here.
	hasAvatar, err := s.repo.Avatar().Exists(ctx, user.ID)
	if err != nil {
		s.logger.Warn("avatar existence check failed", "user_id", user.ID, "error", err)
		hasAvatar = false
	}

	return &UserDetail{User: user, HasAvatar: hasAvatar}, nil
}
