package services

import (
	"context"
	"errors"
	"testing"
)

func TestRosterService_Export(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	admin, instructor, student1, student2 := seedUsers(repo)
	course := seedCourse(t, repo, instructor.ID)

	enrollSvc := NewEnrollmentService(repo, testLogger(), nil)
	if err := enrollSvc.Update(ctx, course.ID, []uint{student1.ID, student2.ID}, nil, admin); err != nil {
		t.Fatalf("enroll error: %v", err)
	}

	svc := NewRosterService(repo, testLogger())

	f, err := svc.Export(ctx, course.ID, instructor)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(rosterSheet)
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	// Title row, header row, one row per student.
	if len(rows) != 4 {
		t.Fatalf("roster has %d rows, want 4: %v", len(rows), rows)
	}
	if rows[1][0] != "Student ID" || rows[1][1] != "Identity" {
		t.Errorf("header row = %v", rows[1])
	}
	if rows[2][1] != student1.Sub {
		t.Errorf("first student identity = %q, want %q", rows[2][1], student1.Sub)
	}

	if _, err := svc.Export(ctx, course.ID, student1); !errors.Is(err, ErrNoPermission) {
		t.Errorf("Export() by student error = %v, want ErrNoPermission", err)
	}
	if _, err := svc.Export(ctx, 999, admin); !errors.Is(err, ErrNoPermission) {
		t.Errorf("Export() missing course error = %v, want ErrNoPermission", err)
	}
	if _, err := svc.Export(ctx, course.ID, nil); !errors.Is(err, ErrNoPermission) {
		t.Errorf("Export() anonymous error = %v, want ErrNoPermission", err)
	}
}
