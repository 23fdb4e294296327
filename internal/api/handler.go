// Package api exposes the management and webhook HTTP surface.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"classlab/internal/domain"
)

// CourseOrchestrator drives course and assignment workflows.
// Implemented by service.CourseService.
type CourseOrchestrator interface {
	CreateCourse(ctx context.Context, req domain.CreateGroupRequest) error
	DeleteCourse(ctx context.Context, courseUID uuid.UUID) error
	CreateAssignment(ctx context.Context, courseUID uuid.UUID, req domain.CreateGroupRequest) error
	DeleteAssignment(ctx context.Context, assignmentUID uuid.UUID) error
	AddInstructor(ctx context.Context, courseUID uuid.UUID, req domain.AddInstructorRequest) error
}

// RepoOrchestrator drives repository workflows.
// Implemented by service.RepoService.
type RepoOrchestrator interface {
	Create(ctx context.Context, courseUID, assignmentUID uuid.UUID, req domain.CreateRepoRequest) (string, error)
	Delete(ctx context.Context, key domain.RepoKey) error
	DownloadArchive(ctx context.Context, key domain.RepoKey, format string) (*http.Response, error)
	Commits(ctx context.Context, key domain.RepoKey, pageURL string) (*http.Response, error)
}

// UserOrchestrator drives account workflows.
// Implemented by service.UserService.
type UserOrchestrator interface {
	Create(ctx context.Context, req domain.CreateUserRequest) error
	ReplaceKey(ctx context.Context, email string, req domain.UpdateKeyRequest) error
}

// PushForwarder relays authenticated push callbacks.
// Implemented by service.HookService.
type PushForwarder interface {
	ForwardPush(ctx context.Context, courseUID, assignmentUID uuid.UUID, gitSSHURL string, additionalData *string) error
}

// HealthChecker probes the service's dependencies.
// Implemented by service.HealthService.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Handler holds the HTTP handlers for all routes.
type Handler struct {
	courses   CourseOrchestrator
	repos     RepoOrchestrator
	users     UserOrchestrator
	hooks     PushForwarder
	health    HealthChecker
	hookGuard func(http.Handler) http.Handler
	logger    *slog.Logger
}

// NewHandler creates a Handler. hookGuard is the authentication middleware
// applied to the webhook route only.
func NewHandler(courses CourseOrchestrator, repos RepoOrchestrator, users UserOrchestrator,
	hooks PushForwarder, health HealthChecker, hookGuard func(http.Handler) http.Handler,
	logger *slog.Logger) *Handler {
	return &Handler{
		courses:   courses,
		repos:     repos,
		users:     users,
		hooks:     hooks,
		health:    health,
		hookGuard: hookGuard,
		logger:    logger,
	}
}

// Routes builds the router for the management surface and the guarded
// webhook endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/courses", func(r chi.Router) {
		r.Post("/", h.createCourse)
		r.Route("/{course}", func(r chi.Router) {
			r.Delete("/", h.deleteCourse)
			r.Post("/instructors", h.addInstructor)
			r.Route("/assignments", func(r chi.Router) {
				r.Post("/", h.createAssignment)
				r.Route("/{assignment}", func(r chi.Router) {
					r.Delete("/", h.deleteAssignment)
					r.Post("/repos", h.createRepo)
					r.Route("/repos/{repo}", func(r chi.Router) {
						r.Delete("/", h.deleteRepo)
						r.Get("/download", h.downloadRepo)
						r.Get("/commits", h.listCommits)
					})
				})
			})
		})
	})

	r.Post("/users", h.createUser)
	r.Post("/users/{email}/key", h.updateKey)

	r.Get("/healthcheck", h.healthcheck)

	r.Group(func(r chi.Router) {
		r.Use(h.hookGuard)
		r.Post("/hooks/{course}/{assignment}", h.handleHook)
	})

	return r
}
