package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tarpaulin-edu/course-service/internal/events"
	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

type enrollmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
	}
}

func (s *enrollmentService) Get(ctx context.Context, courseID uint, requester *models.User) ([]uint, error) {
	course, err := s.authorizeCourseAccess(ctx, courseID, requester)
	if err != nil {
		return nil, err
	}
	return course.Students, nil
}

// Update applies the add/remove sets bidirectionally. Validation order is
// fixed: authorization, then set-level rules, then per-id student checks.
func (s *enrollmentService) Update(ctx context.Context, courseID uint, add, remove []uint, requester *models.User) error {
	course, err := s.authorizeCourseAccess(ctx, courseID, requester)
	if err != nil {
		return err
	}

	add = dedupe(add)
	remove = dedupe(remove)

	if len(add)+len(remove) == 0 {
		return ErrInvalidEnrollment
	}
	if intersects(add, remove) {
		return ErrInvalidEnrollment
	}

	if err := s.checkAllStudents(ctx, append(append([]uint{}, add...), remove...)); err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		// The authorization read may be stale (cached, or concurrently
		// modified); the lock serializes overlapping updates on the row.
		current, err := tx.Course().GetByIDForUpdate(ctx, course.ID)
		if err != nil {
			return err
		}

		students := current.Students
		for _, id := range add {
			students, _ = appendUnique(students, id)
		}
		for _, id := range remove {
			students, _ = removeID(students, id)
		}
		current.Students = students

		if err := tx.Course().Update(ctx, current); err != nil {
			return err
		}

		// Keep each student's back-reference list consistent with the
		// course's students set. Set semantics make re-adds no-ops.
		for _, id := range add {
			if err := s.updateStudentBackRef(ctx, tx, id, course.ID, true); err != nil {
				return err
			}
		}
		for _, id := range remove {
			if err := s.updateStudentBackRef(ctx, tx, id, course.ID, false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEnrollmentEvent(ctx, course.ID, add, remove)
	s.logger.Info("enrollment updated", "course_id", course.ID, "added", len(add), "removed", len(remove))
	return nil
}

// authorizeCourseAccess loads the course and enforces the admin-or-course-
// instructor rule. A missing course yields the same denial as a role
// failure so existence is not leaked.
func (s *enrollmentService) authorizeCourseAccess(ctx context.Context, courseID uint, requester *models.User) (*models.Course, error) {
	if requester == nil {
		return nil, ErrNoPermission
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoPermission
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if requester.Role != models.RoleAdmin && requester.ID != course.InstructorID {
		return nil, NewPermissionError(requester.ID, "enrollment", "access", "not admin or course instructor")
	}
	return course, nil
}

// checkAllStudents verifies every id resolves to an existing student.
func (s *enrollmentService) checkAllStudents(ctx context.Context, ids []uint) error {
	ids = dedupe(ids)
	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve enrollment ids: %w", err)
	}

	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		u, ok := byID[id]
		if !ok || u.Role != models.RoleStudent {
			return ErrInvalidEnrollment
		}
	}
	return nil
}

func (s *enrollmentService) updateStudentBackRef(ctx context.Context, tx repositories.Repository, studentID, courseID uint, enroll bool) error {
	student, err := tx.User().GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	var (
		updated []uint
		changed bool
	)
	if enroll {
		updated, changed = appendUnique(student.Courses, courseID)
	} else {
		updated, changed = removeID(student.Courses, courseID)
	}
	if !changed {
		return nil
	}
	return tx.User().UpdateCourses(ctx, studentID, updated)
}

func (s *enrollmentService) publishEnrollmentEvent(ctx context.Context, courseID uint, add, remove []uint) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.TypeEnrollmentUpdated, events.EnrollmentEvent{
		CourseID: courseID,
		Added:    add,
		Removed:  remove,
	})
	if err != nil {
		s.logger.Error("failed to publish enrollment event", "course_id", courseID, "error", err)
	}
}
