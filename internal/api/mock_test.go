package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"classlab/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// passGuard is a no-op hook guard for handler tests.
func passGuard(next http.Handler) http.Handler {
	return next
}

// === Course Orchestrator Mock ===

type mockCourses struct {
	createCourseFn     func(ctx context.Context, req domain.CreateGroupRequest) error
	deleteCourseFn     func(ctx context.Context, courseUID uuid.UUID) error
	createAssignmentFn func(ctx context.Context, courseUID uuid.UUID, req domain.CreateGroupRequest) error
	deleteAssignmentFn func(ctx context.Context, assignmentUID uuid.UUID) error
	addInstructorFn    func(ctx context.Context, courseUID uuid.UUID, req domain.AddInstructorRequest) error
}

func (m *mockCourses) CreateCourse(ctx context.Context, req domain.CreateGroupRequest) error {
	if m.createCourseFn != nil {
		return m.createCourseFn(ctx, req)
	}
	panic("unexpected call to mockCourses.CreateCourse")
}

func (m *mockCourses) DeleteCourse(ctx context.Context, courseUID uuid.UUID) error {
	if m.deleteCourseFn != nil {
		return m.deleteCourseFn(ctx, courseUID)
	}
	panic("unexpected call to mockCourses.DeleteCourse")
}

func (m *mockCourses) CreateAssignment(ctx context.Context, courseUID uuid.UUID, req domain.CreateGroupRequest) error {
	if m.createAssignmentFn != nil {
		return m.createAssignmentFn(ctx, courseUID, req)
	}
	panic("unexpected call to mockCourses.CreateAssignment")
}

func (m *mockCourses) DeleteAssignment(ctx context.Context, assignmentUID uuid.UUID) error {
	if m.deleteAssignmentFn != nil {
		return m.deleteAssignmentFn(ctx, assignmentUID)
	}
	panic("unexpected call to mockCourses.DeleteAssignment")
}

func (m *mockCourses) AddInstructor(ctx context.Context, courseUID uuid.UUID, req domain.AddInstructorRequest) error {
	if m.addInstructorFn != nil {
		return m.addInstructorFn(ctx, courseUID, req)
	}
	panic("unexpected call to mockCourses.AddInstructor")
}

// === Repo Orchestrator Mock ===

type mockRepos struct {
	createFn          func(ctx context.Context, courseUID, assignmentUID uuid.UUID, req domain.CreateRepoRequest) (string, error)
	deleteFn          func(ctx context.Context, key domain.RepoKey) error
	downloadArchiveFn func(ctx context.Context, key domain.RepoKey, format string) (*http.Response, error)
	commitsFn         func(ctx context.Context, key domain.RepoKey, pageURL string) (*http.Response, error)
}

func (m *mockRepos) Create(ctx context.Context, courseUID, assignmentUID uuid.UUID, req domain.CreateRepoRequest) (string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, courseUID, assignmentUID, req)
	}
	panic("unexpected call to mockRepos.Create")
}

func (m *mockRepos) Delete(ctx context.Context, key domain.RepoKey) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	panic("unexpected call to mockRepos.Delete")
}

func (m *mockRepos) DownloadArchive(ctx context.Context, key domain.RepoKey, format string) (*http.Response, error) {
	if m.downloadArchiveFn != nil {
		return m.downloadArchiveFn(ctx, key, format)
	}
	panic("unexpected call to mockRepos.DownloadArchive")
}

func (m *mockRepos) Commits(ctx context.Context, key domain.RepoKey, pageURL string) (*http.Response, error) {
	if m.commitsFn != nil {
		return m.commitsFn(ctx, key, pageURL)
	}
	panic("unexpected call to mockRepos.Commits")
}

// === User Orchestrator Mock ===

type mockUsers struct {
	createFn     func(ctx context.Context, req domain.CreateUserRequest) error
	replaceKeyFn func(ctx context.Context, email string, req domain.UpdateKeyRequest) error
}

func (m *mockUsers) Create(ctx context.Context, req domain.CreateUserRequest) error {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	panic("unexpected call to mockUsers.Create")
}

func (m *mockUsers) ReplaceKey(ctx context.Context, email string, req domain.UpdateKeyRequest) error {
	if m.replaceKeyFn != nil {
		return m.replaceKeyFn(ctx, email, req)
	}
	panic("unexpected call to mockUsers.ReplaceKey")
}

// === Push Forwarder Mock ===

type mockHooks struct {
	forwardPushFn func(ctx context.Context, courseUID, assignmentUID uuid.UUID, gitSSHURL string, additionalData *string) error
}

func (m *mockHooks) ForwardPush(ctx context.Context, courseUID, assignmentUID uuid.UUID, gitSSHURL string, additionalData *string) error {
	if m.forwardPushFn != nil {
		return m.forwardPushFn(ctx, courseUID, assignmentUID, gitSSHURL, additionalData)
	}
	panic("unexpected call to mockHooks.ForwardPush")
}

// === Health Checker Mock ===

type mockHealth struct {
	checkFn func(ctx context.Context) error
}

func (m *mockHealth) Check(ctx context.Context) error {
	if m.checkFn != nil {
		return m.checkFn(ctx)
	}
	panic("unexpected call to mockHealth.Check")
}

// newTestHandler builds a Handler over the given mocks with a pass-through
// hook guard. Nil mocks panic on use.
func newTestHandler(courses CourseOrchestrator, repos RepoOrchestrator, users UserOrchestrator,
	hooks PushForwarder, health HealthChecker) *Handler {
	if courses == nil {
		courses = &mockCourses{}
	}
	if repos == nil {
		repos = &mockRepos{}
	}
	if users == nil {
		users = &mockUsers{}
	}
	if hooks == nil {
		hooks = &mockHooks{}
	}
	if health == nil {
		health = &mockHealth{}
	}
	return NewHandler(courses, repos, users, hooks, health, passGuard, testLogger())
}
