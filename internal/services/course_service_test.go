package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tarpaulin-edu/course-service/internal/events"
	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/validator"
)

func newCourseService(repo *mockRepository, publisher events.EventPublisher) CourseService {
	return NewCourseService(repo, testLogger(), validator.New(), publisher)
}

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *CreateCourseRequest
		wantErr error
	}{
		{
			name: "valid course",
			req: &CreateCourseRequest{
				Subject:      "CS",
				Number:       "493",
				Title:        "Cloud Application Development",
				Term:         "sp22",
				InstructorID: 2,
			},
		},
		{
			name: "missing subject",
			req: &CreateCourseRequest{
				Number:       "493",
				Title:        "Cloud Application Development",
				Term:         "sp22",
				InstructorID: 2,
			},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "instructor id points at a student",
			req: &CreateCourseRequest{
				Subject:      "CS",
				Number:       "493",
				Title:        "Cloud Application Development",
				Term:         "sp22",
				InstructorID: 3,
			},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "instructor id points at nobody",
			req: &CreateCourseRequest{
				Subject:      "CS",
				Number:       "493",
				Title:        "Cloud Application Development",
				Term:         "sp22",
				InstructorID: 99,
			},
			wantErr: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			seedUsers(repo)
			publisher := events.NewMockEventPublisher()
			svc := newCourseService(repo, publisher)

			course, err := svc.Create(ctx, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
				}
				if len(publisher.GetPublishedEvents()) != 0 {
					t.Error("no event should be published on a rejected create")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}

			if course.ID == 0 {
				t.Error("created course should get an id")
			}
			if len(course.Students) != 0 {
				t.Errorf("new course should have no students, got %v", course.Students)
			}
			if course.InstructorID != tt.req.InstructorID {
				t.Errorf("InstructorID = %d, want %d", course.InstructorID, tt.req.InstructorID)
			}

			instructor := repo.users[tt.req.InstructorID]
			if !containsID(instructor.Courses, course.ID) {
				t.Errorf("instructor back-reference missing course %d: %v", course.ID, instructor.Courses)
			}

			published := publisher.GetPublishedEvents()
			if len(published) != 1 || published[0].Type != events.TypeCourseCreated {
				t.Errorf("expected one %s event, got %+v", events.TypeCourseCreated, published)
			}
		})
	}
}

func TestCourseService_Get(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedUsers(repo)
	svc := newCourseService(repo, nil)

	created, err := svc.Create(ctx, &CreateCourseRequest{
		Subject: "CS", Number: "361", Title: "Software Engineering I", Term: "fa22", InstructorID: 2,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Subject != "CS" || got.Number != "361" {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := svc.Get(ctx, 999); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrCourseNotFound", err)
	}
}

func TestCourseService_ListPagination(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedUsers(repo)
	svc := newCourseService(repo, nil)

	subjects := []string{"MTH", "CS", "PH", "CS", "BIO", "CS", "WR"}
	for i, subject := range subjects {
		_, err := svc.Create(ctx, &CreateCourseRequest{
			Subject:      subject,
			Number:       fmt.Sprintf("%d00", i+1),
			Title:        "Course " + subject,
			Term:         "sp22",
			InstructorID: 2,
		})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	// Walk every page with the default page size and collect ids.
	var (
		seen    = make(map[uint]bool)
		ordered []string
		offset  int
	)
	for {
		result, err := svc.List(ctx, 0, offset)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if result.Limit != DefaultPageSize {
			t.Fatalf("default limit = %d, want %d", result.Limit, DefaultPageSize)
		}
		if result.Total != int64(len(subjects)) {
			t.Fatalf("total = %d, want %d", result.Total, len(subjects))
		}
		if len(result.Courses) == 0 {
			break
		}
		if len(result.Courses) > DefaultPageSize {
			t.Fatalf("page has %d courses, want at most %d", len(result.Courses), DefaultPageSize)
		}
		for _, c := range result.Courses {
			if seen[c.ID] {
				t.Fatalf("course %d appeared on two pages", c.ID)
			}
			seen[c.ID] = true
			ordered = append(ordered, c.Subject)
		}
		offset += result.Limit
	}

	if len(seen) != len(subjects) {
		t.Fatalf("pages covered %d courses, want %d", len(seen), len(subjects))
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] > ordered[i] {
			t.Fatalf("subjects out of order across pages: %v", ordered)
		}
	}
}

func TestCourseService_Update(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (CourseService, *mockRepository, *events.MockEventPublisher, *models.Course) {
		repo := newMockRepository()
		seedUsers(repo)
		repo.users[5] = &models.User{ID: 5, Sub: "auth0|instr2", Role: models.RoleInstructor}

		publisher := events.NewMockEventPublisher()
		svc := newCourseService(repo, publisher)
		course, err := svc.Create(ctx, &CreateCourseRequest{
			Subject: "CS", Number: "493", Title: "Cloud Application Development", Term: "sp22", InstructorID: 2,
		})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		publisher.ClearEvents()
		return svc, repo, publisher, course
	}

	t.Run("partial update changes only given fields", func(t *testing.T) {
		svc, _, publisher, course := setup(t)

		title := "Cloud Application Development II"
		updated, err := svc.Update(ctx, course.ID, &UpdateCourseRequest{Title: &title})
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if updated.Title != title {
			t.Errorf("Title = %q, want %q", updated.Title, title)
		}
		if updated.Subject != "CS" || updated.Term != "sp22" {
			t.Errorf("untouched fields changed: %+v", updated)
		}
		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeCourseUpdated {
			t.Errorf("expected one %s event, got %+v", events.TypeCourseUpdated, published)
		}
	})

	t.Run("instructor change moves the back-reference", func(t *testing.T) {
		svc, repo, _, course := setup(t)

		newInstructor := uint(5)
		if _, err := svc.Update(ctx, course.ID, &UpdateCourseRequest{InstructorID: &newInstructor}); err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if containsID(repo.users[2].Courses, course.ID) {
			t.Error("old instructor still references the course")
		}
		if !containsID(repo.users[5].Courses, course.ID) {
			t.Error("new instructor missing the course back-reference")
		}
	})

	t.Run("update keeps a concurrently written roster", func(t *testing.T) {
		svc, repo, _, course := setup(t)

		// An enrollment commits between the update's existence check and
		// its transaction; the locked re-read must preserve it.
		repo.beforeTx = func() {
			repo.courses[course.ID].Students = []uint{3}
			repo.beforeTx = nil
		}

		title := "Cloud Application Development II"
		updated, err := svc.Update(ctx, course.ID, &UpdateCourseRequest{Title: &title})
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if !updated.HasStudent(3) {
			t.Errorf("students = %v, concurrent enrollment was lost", updated.Students)
		}
		if repo.lockedReads == 0 {
			t.Error("course was not re-read under lock inside the transaction")
		}
	})

	t.Run("new instructor must hold the instructor role", func(t *testing.T) {
		svc, _, _, course := setup(t)

		studentID := uint(3)
		if _, err := svc.Update(ctx, course.ID, &UpdateCourseRequest{InstructorID: &studentID}); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Update() error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("missing course reads as a permission denial", func(t *testing.T) {
		svc, _, _, _ := setup(t)

		title := "x"
		if _, err := svc.Update(ctx, 999, &UpdateCourseRequest{Title: &title}); !errors.Is(err, ErrNoPermission) {
			t.Errorf("Update() error = %v, want ErrNoPermission", err)
		}
	})
}

func TestCourseService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	_, _, student1, student2 := seedUsers(repo)
	publisher := events.NewMockEventPublisher()
	svc := newCourseService(repo, publisher)

	course, err := svc.Create(ctx, &CreateCourseRequest{
		Subject: "CS", Number: "493", Title: "Cloud Application Development", Term: "sp22", InstructorID: 2,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Enroll both students so the cascade has back-references to clear.
	enrollSvc := NewEnrollmentService(repo, testLogger(), nil)
	admin := repo.users[1]
	if err := enrollSvc.Update(ctx, course.ID, []uint{student1.ID, student2.ID}, nil, admin); err != nil {
		t.Fatalf("enroll error: %v", err)
	}
	publisher.ClearEvents()

	if err := svc.Delete(ctx, course.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, ok := repo.courses[course.ID]; ok {
		t.Error("course still present after delete")
	}
	for _, id := range []uint{2, student1.ID, student2.ID} {
		if containsID(repo.users[id].Courses, course.ID) {
			t.Errorf("user %d still references deleted course", id)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeCourseDeleted {
		t.Errorf("expected one %s event, got %+v", events.TypeCourseDeleted, published)
	}

	if err := svc.Delete(ctx, 999); !errors.Is(err, ErrNoPermission) {
		t.Errorf("Delete(missing) error = %v, want ErrNoPermission", err)
	}
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
