package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. All three
// per-domain repositories share the same maps, so transactional closures see
// their own writes just like the real implementation.
type mockRepository struct {
	users        map[uint]*models.User
	courses      map[uint]*models.Course
	nextCourseID uint

	avatars map[uint][]byte
	// avatarErr, when set, is returned by every avatar operation to
	// simulate a blob store outage.
	avatarErr error

	// lockedReads counts GetByIDForUpdate calls so tests can assert that
	// mutations re-read the course inside the transaction.
	lockedReads int
	// beforeTx, when set, runs just before a transactional closure. Tests
	// use it to slip a concurrent write in between a service's
	// authorization read and its transaction.
	beforeTx func()
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:        make(map[uint]*models.User),
		courses:      make(map[uint]*models.Course),
		nextCourseID: 1,
		avatars:      make(map[uint][]byte),
	}
}

func (m *mockRepository) User() repositories.UserRepository     { return &mockUserRepo{m} }
func (m *mockRepository) Course() repositories.CourseRepository { return &mockCourseRepo{m} }
func (m *mockRepository) Avatar() repositories.AvatarRepository { return &mockAvatarRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if m.beforeTx != nil {
		m.beforeTx()
	}
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *mockUserRepo) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	for _, user := range r.m.users {
		if user.Sub == sub {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if user, ok := r.m.users[id]; ok {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockUserRepo) List(ctx context.Context) ([]*models.User, error) {
	ids := make([]uint, 0, len(r.m.users))
	for id := range r.m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		copied := *r.m.users[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *mockUserRepo) HasRole(ctx context.Context, id uint, role models.UserRole) (bool, error) {
	user, ok := r.m.users[id]
	if !ok {
		return false, nil
	}
	return user.Role == role, nil
}

func (r *mockUserRepo) UpdateCourses(ctx context.Context, id uint, courseIDs []uint) error {
	user, ok := r.m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Courses = courseIDs
	return nil
}

func (r *mockUserRepo) Upsert(ctx context.Context, user *models.User) error {
	copied := *user
	r.m.users[user.ID] = &copied
	return nil
}

type mockCourseRepo struct{ m *mockRepository }

func (r *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = r.m.nextCourseID
	r.m.nextCourseID++
	copied := *course
	r.m.courses[course.ID] = &copied
	return nil
}

func (r *mockCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, ok := r.m.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *course
	return &copied, nil
}

func (r *mockCourseRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Course, error) {
	r.m.lockedReads++
	return r.GetByID(ctx, id)
}

func (r *mockCourseRepo) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	all := make([]*models.Course, 0, len(r.m.courses))
	for _, c := range r.m.courses {
		copied := *c
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Subject != all[j].Subject {
			return all[i].Subject < all[j].Subject
		}
		return all[i].ID < all[j].ID
	})

	total := int64(len(all))
	if filters.Offset >= len(all) {
		return []*models.Course{}, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filters.Offset:end], total, nil
}

func (r *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if _, ok := r.m.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *course
	r.m.courses[course.ID] = &copied
	return nil
}

func (r *mockCourseRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.m.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.courses, id)
	return nil
}

type mockAvatarRepo struct{ m *mockRepository }

func (r *mockAvatarRepo) Exists(ctx context.Context, userID uint) (bool, error) {
	if r.m.avatarErr != nil {
		return false, r.m.avatarErr
	}
	_, ok := r.m.avatars[userID]
	return ok, nil
}

func (r *mockAvatarRepo) Upload(ctx context.Context, userID uint, reader io.Reader, size int64) error {
	if r.m.avatarErr != nil {
		return r.m.avatarErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	r.m.avatars[userID] = data
	return nil
}

func (r *mockAvatarRepo) Download(ctx context.Context, userID uint) (io.ReadCloser, error) {
	if r.m.avatarErr != nil {
		return nil, r.m.avatarErr
	}
	data, ok := r.m.avatars[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (r *mockAvatarRepo) Delete(ctx context.Context, userID uint) error {
	if r.m.avatarErr != nil {
		return r.m.avatarErr
	}
	delete(r.m.avatars, userID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seedUsers(m *mockRepository) (admin, instructor, student1, student2 *models.User) {
	admin = &models.User{ID: 1, Sub: "auth0|admin1", Role: models.RoleAdmin}
	instructor = &models.User{ID: 2, Sub: "auth0|instr1", Role: models.RoleInstructor}
	student1 = &models.User{ID: 3, Sub: "auth0|stud1", Role: models.RoleStudent}
	student2 = &models.User{ID: 4, Sub: "auth0|stud2", Role: models.RoleStudent}
	for _, u := range []*models.User{admin, instructor, student1, student2} {
		m.users[u.ID] = u
	}
	return admin, instructor, student1, student2
}
