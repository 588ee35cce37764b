package repositories

import (
	"context"

	"github.com/tarpaulin-edu/course-service/internal/models"
)

// CourseFilters defines pagination for course listings.
type CourseFilters struct {
	Limit  int
	Offset int
}

// CourseRepository is CRUD plus subject-sorted pagination over courses.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	// GetByIDForUpdate loads the course under a row lock for the
	// enclosing transaction, bypassing any cache. Mutations that rewrite
	// the students set must read through this so concurrent updates
	// serialize instead of losing writes.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Course, error)
	// List returns one page ordered by subject ascending with id as the
	// deterministic tie-break, plus the total course count.
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
}
