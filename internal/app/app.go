// Package app provides application-level wiring: it assembles repositories,
// upstream clients, services, and the HTTP router from configuration.
package app

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classlab/internal/api"
	"classlab/internal/backend"
	"classlab/internal/config"
	"classlab/internal/db/repository"
	"classlab/internal/gitlab"
	"classlab/internal/middleware"
	"classlab/internal/service"
	"classlab/internal/webhook"
)

// gitlabPushEvent is the event header value GitLab sends for push webhooks.
const gitlabPushEvent = "Push Hook"

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles and config.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Handler http.Handler
}

// New wires all repositories, clients, and services from the provided deps
// and builds the HTTP router.
func New(deps Deps) *App {
	cfg := deps.Cfg

	// === Repositories ===
	// Mapping writes are serialized through the write pool; lookups inside
	// orchestration flows go through the same pool to observe their own writes.
	userRepo := repository.NewUserRepo(deps.WriteDB)
	groupRepo := repository.NewGroupRepo(deps.WriteDB)
	projectRepo := repository.NewProjectRepo(deps.WriteDB)

	// === Upstream clients ===
	upstream := gitlab.New(cfg.GitLab.BaseURL, cfg.GitLab.Token, nil,
		deps.Logger.With("component", "gitlab"))
	forwarder := backend.New(cfg.Backend.URL, cfg.Backend.AuthHeader, nil,
		deps.Logger.With("component", "backend"))

	// === Services ===
	courseSvc := service.NewCourseService(groupRepo, userRepo, upstream,
		deps.Logger.With("component", "course"))
	repoSvc := service.NewRepoService(projectRepo, groupRepo, userRepo, upstream,
		cfg.PublicBaseURL, cfg.WebhookSalt,
		deps.Logger.With("component", "repo"))
	userSvc := service.NewUserService(userRepo, upstream,
		deps.Logger.With("component", "user"))
	hookSvc := service.NewHookService(forwarder,
		deps.Logger.With("component", "hook"))
	healthSvc := service.NewHealthService(deps.ReadDB, upstream,
		deps.Logger.With("component", "health"))

	// === Webhook guard ===
	// Callbacks pass the rate limiter first, then IP and token checks.
	guard := webhook.NewGuard(gitlabPushEvent, cfg.WebhookSalt, cfg.AllowedHookIPs,
		deps.Logger.With("component", "webhook-guard"))
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	hookGuard := func(next http.Handler) http.Handler {
		return limiter.Middleware(guard.Middleware(next))
	}

	handler := api.NewHandler(courseSvc, repoSvc, userSvc, hookSvc, healthSvc,
		hookGuard, deps.Logger.With("component", "api"))

	// === Router ===
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", handler.Routes())

	return &App{Handler: r}
}
