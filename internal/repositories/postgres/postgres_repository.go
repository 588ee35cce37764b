package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tarpaulin-edu/course-service/internal/cache"
	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

// RepositoryConfig holds everything the repository layer needs. The
// database handle and clients are created once at startup and shared.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	// AvatarStore is the external blob adapter; it lives outside the
	// database but is exposed through the same Repository aggregate.
	AvatarStore repositories.AvatarRepository
}

type repository struct {
	db     *gorm.DB
	caches *cache.CacheManager

	userRepo   repositories.UserRepository
	courseRepo repositories.CourseRepository
	avatarRepo repositories.AvatarRepository
}

func newRepository(db *gorm.DB, caches *cache.CacheManager, avatarStore repositories.AvatarRepository) *repository {
	return &repository{
		db:         db,
		caches:     caches,
		userRepo:   NewUserPostgres(db, caches),
		courseRepo: NewCoursePostgres(db, caches),
		avatarRepo: avatarStore,
	}
}

func (r *repository) User() repositories.UserRepository     { return r.userRepo }
func (r *repository) Course() repositories.CourseRepository { return r.courseRepo }
func (r *repository) Avatar() repositories.AvatarRepository { return r.avatarRepo }

// WithTransaction runs fn with a Repository bound to one transaction, so the
// multi-record enrollment update commits or rolls back as a unit.
func (r *repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepository(tx, r.caches, r.avatarRepo))
	})
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.Close()
}

// repositoryManager implements repositories.RepositoryManager.
type repositoryManager struct {
	config RepositoryConfig
	repo   *repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &repositoryManager{config: config}
}

func (rm *repositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database handle is required")
	}

	if err := rm.config.DB.AutoMigrate(&models.User{}, &models.Course{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	caches := cache.NewCacheManager(rm.config.RedisClient)
	rm.repo = newRepository(rm.config.DB, caches, rm.config.AvatarStore)
	return nil
}

func (rm *repositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *repositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository manager not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *repositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
