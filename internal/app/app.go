package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-todo-planner/internal/auth"
	"go-todo-planner/internal/calendar"
	"go-todo-planner/internal/config"
	"go-todo-planner/internal/database"
	"go-todo-planner/internal/handler"
	"go-todo-planner/internal/middleware"
	"go-todo-planner/internal/repository"
	"go-todo-planner/internal/repository/postgres"
	"go-todo-planner/internal/repository/sqlite"
	"go-todo-planner/internal/router"
	"go-todo-planner/internal/service"
)

type App struct {
	server *http.Server
	store  database.Store
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	store, users, todos, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	slog.Info("database ready", "driver", cfg.DatabaseDriver)

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	authService, err := service.NewAuthService(users, hasher, tokens, cfg.JWTTTL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	todoService := service.NewTodoService(todos)
	fetcher := calendar.NewFetcher(cfg.ICalFetchTimeout, cfg.ICalMaxBytes)
	importService := service.NewImportService(fetcher, todoService, cfg.ImportDefaultCategory)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(tokens), router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Todo:     handler.NewTodoHandler(todoService, importService, "go-todo-planner"),
		Calendar: handler.NewCalendarHandler(importService),
	}, store)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, store: store}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (database.Store, repository.UserRepository, repository.TodoRepository, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		slog.Info("opening SQLite database", "path", cfg.SQLitePath)
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, sqlite.NewUserRepository(db.DB), sqlite.NewTodoRepository(db.DB), nil
	default:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, postgres.NewUserRepository(db.Pool), postgres.NewTodoRepository(db.Pool), nil
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.store.Close()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
