package repositories

import (
	"context"

	"github.com/tarpaulin-edu/course-service/internal/models"
)

// UserRepository reads and updates local user records. Users are created by
// the seeding command only; the API itself never inserts or deletes them.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetBySub resolves an identity provider subject claim to a user.
	// Returns ErrNotFound when no user carries that subject.
	GetBySub(ctx context.Context, sub string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)

	HasRole(ctx context.Context, id uint, role models.UserRole) (bool, error)

	// UpdateCourses replaces a user's course back-reference list.
	UpdateCourses(ctx context.Context, id uint, courseIDs []uint) error

	// Upsert inserts or replaces a user row with a fixed id (seeding only).
	Upsert(ctx context.Context, user *models.User) error
}
