package repositories

import "context"

// Repository aggregates the per-domain repositories behind one handle that
// is constructed once at startup and injected everywhere.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Avatar() AvatarRepository

	// WithTransaction runs fn against a Repository bound to a single
	// database transaction. Blob operations inside fn are not transactional.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
