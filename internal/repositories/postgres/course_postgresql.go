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

// CoursePostgres stores courses in Postgres with a short-lived cache on
// single-course reads, the hot path behind the public course endpoints.
type CoursePostgres struct {
	db     *gorm.DB
	caches *cache.CacheManager
}

func NewCoursePostgres(db *gorm.DB, caches *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgres{db: db, caches: caches}
}

func courseCacheKey(id uint) string {
	return fmt.Sprintf("id:%d", id)
}

func (r *CoursePostgres) Create(ctx context.Context, course *models.Course) error {
	if course.Students == nil {
		course.Students = []uint{}
	}
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *CoursePostgres) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var cached models.Course
	if err := r.caches.Course.Get(ctx, courseCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	_ = r.caches.Course.Set(ctx, courseCacheKey(id), &course, cache.CourseCacheTTL)
	return &course, nil
}

func (r *CoursePostgres) GetByIDForUpdate(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock course: %w", err)
	}
	return &course, nil
}

// List orders by subject with id as tie-break so repeated paginations see a
// stable sequence.
func (r *CoursePostgres) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	var courses []*models.Course
	err := r.db.WithContext(ctx).
		Order("subject ASC, id ASC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&courses).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

func (r *CoursePostgres) Update(ctx context.Context, course *models.Course) error {
	if course.Students == nil {
		course.Students = []uint{}
	}
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	cache.SafeDelete(ctx, r.caches.Course, courseCacheKey(course.ID))
	return nil
}

func (r *CoursePostgres) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.SafeDelete(ctx, r.caches.Course, courseCacheKey(id))
	return nil
}
