package services

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request DTOs live in the validator package so their tags and the rules
// validating them stay together.
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type LoginRequest = validator.LoginRequest
type EnrollmentUpdateRequest = validator.EnrollmentUpdateRequest

// CourseListResult is one subject-sorted page plus the total count the
// handler needs to decide whether a next link exists.
type CourseListResult struct {
	Courses []*models.Course
	Total   int64
	Limit   int
	Offset  int
}

// UserDetail is the user record plus the failure-tolerant avatar enrichment.
type UserDetail struct {
	User *models.User
	// HasAvatar is false when the blob store errored; that failure is
	// logged and deliberately not propagated (degrade-gracefully policy).
	HasAvatar bool
}

// ===== SERVICE INTERFACES =====

// AuthService proxies the resource-owner-password grant to the identity
// provider.
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (string, error)
}

type UserService interface {
	// List returns all user records. Admin gating happens at the route.
	List(ctx context.Context) ([]*models.User, error)
	// Get returns a single user visible to an admin or the user themself.
	Get(ctx context.Context, id uint, requester *models.User) (*UserDetail, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	Get(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, limit, offset int) (*CourseListResult, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id uint) error
}

// EnrollmentService coordinates the bidirectional student/course updates.
type EnrollmentService interface {
	Get(ctx context.Context, courseID uint, requester *models.User) ([]uint, error)
	Update(ctx context.Context, courseID uint, add, remove []uint, requester *models.User) error
}

// AvatarService manages the strictly self-only per-user avatar blob.
type AvatarService interface {
	Upload(ctx context.Context, userID uint, requester *models.User, r io.Reader, size int64) error
	Download(ctx context.Context, userID uint, requester *models.User) (io.ReadCloser, error)
	Delete(ctx context.Context, userID uint, requester *models.User) error
}

// RosterService renders a course's enrollment as a spreadsheet.
type RosterService interface {
	Export(ctx context.Context, courseID uint, requester *models.User) (*excelize.File, error)
}

// ServiceManager wires and owns all service instances.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Course() CourseService
	Enrollment() EnrollmentService
	Avatar() AvatarService
	Roster() RosterService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
