package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-todo-planner/internal/config"
	"go-todo-planner/internal/handler"
	"go-todo-planner/internal/middleware"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Todo     *handler.TodoHandler
	Calendar *handler.CalendarHandler
}

type healthChecker interface {
	Health(ctx context.Context) error
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, store healthChecker) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := store.Health(req.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/forgot-password", h.Auth.ForgotPassword)
		})

		api.Post("/proxy-ical", h.Calendar.Proxy)

		api.Route("/todos", func(todos chi.Router) {
			todos.Use(authMiddleware.RequireAuth)

			todos.Get("/", h.Todo.List)
			todos.Post("/", h.Todo.Create)
			todos.Post("/import", h.Todo.Import)
			todos.Get("/export.ics", h.Todo.Export)
			todos.Get("/{id}", h.Todo.Get)
			todos.Put("/{id}", h.Todo.Update)
			todos.Delete("/{id}", h.Todo.Delete)
		})
	})

	return r
}
