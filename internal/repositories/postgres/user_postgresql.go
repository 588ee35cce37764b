package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tarpaulin-edu/course-service/internal/cache"
	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

// UserPostgres resolves users against Postgres with a Redis cache in front
// of the sub-to-user index, since every authenticated request performs that
// lookup.
type UserPostgres struct {
	db     *gorm.DB
	caches *cache.CacheManager
}

func NewUserPostgres(db *gorm.DB, caches *cache.CacheManager) repositories.UserRepository {
	return &UserPostgres{db: db, caches: caches}
}

func (r *UserPostgres) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserPostgres) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	cacheKey := fmt.Sprintf("sub:%s", sub)

	var cached models.User
	if err := r.caches.User.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where("sub = ?", sub).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by sub: %w", err)
	}

	_ = r.caches.User.Set(ctx, cacheKey, &user, cache.UserCacheTTL)
	return &user, nil
}

func (r *UserPostgres) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	var users []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return users, nil
}

func (r *UserPostgres) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserPostgres) HasRole(ctx context.Context, id uint, role models.UserRole) (bool, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return user.Role == role, nil
}

func (r *UserPostgres) UpdateCourses(ctx context.Context, id uint, courseIDs []uint) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	user.Courses = courseIDs
	if err := r.db.WithContext(ctx).Model(user).Update("courses", user.Courses).Error; err != nil {
		return fmt.Errorf("failed to update user courses: %w", err)
	}

	cache.SafeDelete(ctx, r.caches.User, fmt.Sprintf("sub:%s", user.Sub))
	return nil
}

func (r *UserPostgres) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sub", "role"}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	cache.SafeDelete(ctx, r.caches.User, fmt.Sprintf("sub:%s", user.Sub))
	return nil
}
