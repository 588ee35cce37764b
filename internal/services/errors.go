package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to the HTTP layer. The base handler maps each to
// exactly one status code; services never pick status codes themselves.
var (
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoPermission covers every authorization denial, including the
	// deliberate missing-course-looks-forbidden policy on delete and
	// enrollment endpoints.
	ErrNoPermission = errors.New("no permission on this resource")

	ErrCourseNotFound = errors.New("course not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrAvatarNotFound = errors.New("avatar not found")

	// ErrInvalidRequest means a malformed or incomplete request body,
	// including an instructor_id that does not reference an instructor.
	ErrInvalidRequest = errors.New("the request body is invalid")

	// ErrInvalidEnrollment means the add/remove sets broke a set-level
	// rule: overlap, empty union, or a non-student id.
	ErrInvalidEnrollment = errors.New("enrollment data is invalid")
)

// PermissionError carries context for a denied operation. It unwraps to
// ErrNoPermission so boundary mapping stays a single errors.Is check.
type PermissionError struct {
	UserID   uint
	Resource string
	Action   string
	Reason   string
}

func NewPermissionError(userID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrNoPermission
}
