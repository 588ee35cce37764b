package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tarpaulin-edu/course-service/internal/events"
	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
	"github.com/tarpaulin-edu/course-service/internal/validator"
)

// DefaultPageSize is the course list page size when no limit is given.
const DefaultPageSize = 3

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error) {
	s.logger.Info("creating course", "subject", req.Subject, "number", req.Number, "term", req.Term)

	if err := s.validator.Validate(req); err != nil {
		return nil, ErrInvalidRequest
	}

	// instructor_id must reference a user with role instructor; anything
	// else is indistinguishable from a missing field to the caller.
	isInstructor, err := s.repo.User().HasRole(ctx, req.InstructorID, models.RoleInstructor)
	if err != nil {
		return nil, fmt.Errorf("instructor check failed: %w", err)
	}
	if !isInstructor {
		return nil, ErrInvalidRequest
	}

	course := &models.Course{
		Subject:      req.Subject,
		Number:       req.Number,
		Title:        req.Title,
		Term:         req.Term,
		InstructorID: req.InstructorID,
		Students:     []uint{},
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Course().Create(ctx, course); err != nil {
			return err
		}
		return s.addCourseBackRef(ctx, tx, req.InstructorID, course.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publishCourseEvent(ctx, events.TypeCourseCreated, course)
	s.logger.Info("course created", "course_id", course.ID)
	return course, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, limit, offset int) (*CourseListResult, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	courses, total, err := s.repo.Course().List(ctx, repositories.CourseFilters{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return &CourseListResult{
		Courses: courses,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	s.logger.Info("updating course", "course_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, ErrInvalidRequest
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Missing course is reported as a denial on admin mutation
			// endpoints so existence is never leaked.
			return nil, ErrNoPermission
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if req.InstructorID != nil && *req.InstructorID != course.InstructorID {
		isInstructor, err := s.repo.User().HasRole(ctx, *req.InstructorID, models.RoleInstructor)
		if err != nil {
			return nil, fmt.Errorf("instructor check failed: %w", err)
		}
		if !isInstructor {
			return nil, ErrInvalidRequest
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		// Patch a locked re-read, not the authorization snapshot, so a
		// concurrent enrollment write on the same row is never clobbered.
		current, err := tx.Course().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		oldInstructor := current.InstructorID

		if req.Subject != nil {
			current.Subject = *req.Subject
		}
		if req.Number != nil {
			current.Number = *req.Number
		}
		if req.Title != nil {
			current.Title = *req.Title
		}
		if req.Term != nil {
			current.Term = *req.Term
		}
		if req.InstructorID != nil {
			current.InstructorID = *req.InstructorID
		}

		if err := tx.Course().Update(ctx, current); err != nil {
			return err
		}
		if current.InstructorID != oldInstructor {
			if err := s.removeCourseBackRef(ctx, tx, oldInstructor, current.ID); err != nil {
				return err
			}
			if err := s.addCourseBackRef(ctx, tx, current.InstructorID, current.ID); err != nil {
				return err
			}
		}
		course = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCourseEvent(ctx, events.TypeCourseUpdated, course)
	return course, nil
}

// Delete removes a course after clearing every back-reference pointing at
// it, all in one transaction.
func (s *courseService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("deleting course", "course_id", id)

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNoPermission
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		// Lock and re-read so the cascade clears the back-references of
		// the row as committed, not as cached.
		current, err := tx.Course().GetByIDForUpdate(ctx, course.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil
			}
			return err
		}

		if err := s.removeCourseBackRef(ctx, tx, current.InstructorID, current.ID); err != nil {
			return err
		}
		for _, studentID := range current.Students {
			if err := s.removeCourseBackRef(ctx, tx, studentID, current.ID); err != nil {
				return err
			}
		}
		return tx.Course().Delete(ctx, current.ID)
	})
	if err != nil {
		return err
	}

	s.publishCourseEvent(ctx, events.TypeCourseDeleted, course)
	s.logger.Info("course deleted", "course_id", course.ID)
	return nil
}

// addCourseBackRef appends courseID to a user's course list if absent.
func (s *courseService) addCourseBackRef(ctx context.Context, tx repositories.Repository, userID, courseID uint) error {
	user, err := tx.User().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	updated, changed := appendUnique(user.Courses, courseID)
	if !changed {
		return nil
	}
	return tx.User().UpdateCourses(ctx, userID, updated)
}

// removeCourseBackRef drops courseID from a user's course list. A user that
// vanished out-of-band is not an error during cascade cleanup.
func (s *courseService) removeCourseBackRef(ctx context.Context, tx repositories.Repository, userID, courseID uint) error {
	user, err := tx.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return err
	}
	updated, changed := removeID(user.Courses, courseID)
	if !changed {
		return nil
	}
	return tx.User().UpdateCourses(ctx, userID, updated)
}

// publishCourseEvent emits a lifecycle event; publish failures are logged,
// never returned, because the mutation already committed.
func (s *courseService) publishCourseEvent(ctx context.Context, eventType string, course *models.Course) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, eventType, events.CourseEvent{
		CourseID:     course.ID,
		Subject:      course.Subject,
		Number:       course.Number,
		Term:         course.Term,
		InstructorID: course.InstructorID,
	})
	if err != nil {
		s.logger.Error("failed to publish course event", "type", eventType, "course_id", course.ID, "error", err)
	}
}
