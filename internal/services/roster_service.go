package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

const rosterSheet = "Roster"

type rosterService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewRosterService(repo repositories.Repository, logger *slog.Logger) RosterService {
	return &rosterService{repo: repo, logger: logger}
}

// Export renders the enrolled students of a course as a spreadsheet.
// Authorization matches the enrollment endpoints: admin or the course's
// instructor, with a missing course reported as a denial.
func (s *rosterService) Export(ctx context.Context, courseID uint, requester *models.User) (*excelize.File, error) {
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
		return nil, NewPermissionError(requester.ID, "roster", "export", "not admin or course instructor")
	}

	students, err := s.repo.User().GetByIDs(ctx, course.Students)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve students: %w", err)
	}

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), rosterSheet)

	title := fmt.Sprintf("%s %s: %s (%s)", course.Subject, course.Number, course.Title, course.Term)
	if err := f.SetSheetRow(rosterSheet, "A1", &[]interface{}{title}); err != nil {
		return nil, fmt.Errorf("failed to write roster title: %w", err)
	}
	if err := f.SetSheetRow(rosterSheet, "A2", &[]interface{}{"Student ID", "Identity"}); err != nil {
		return nil, fmt.Errorf("failed to write roster header: %w", err)
	}

	for i, student := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, fmt.Errorf("failed to compute roster cell: %w", err)
		}
		if err := f.SetSheetRow(rosterSheet, cell, &[]interface{}{student.ID, student.Sub}); err != nil {
			return nil, fmt.Errorf("failed to write roster row: %w", err)
		}
	}

	s.logger.Info("roster exported", "course_id", course.ID, "students", len(students))
	return f, nil
}
