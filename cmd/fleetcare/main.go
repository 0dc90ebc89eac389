package main

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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/fleetcare/internal/adapter/fsm"
	handler "github.com/neomorfeo/fleetcare/internal/adapter/http"
	otelad "github.com/neomorfeo/fleetcare/internal/adapter/otel"
	riverad "github.com/neomorfeo/fleetcare/internal/adapter/river"
	"github.com/neomorfeo/fleetcare/internal/adapter/sqlite"
	"github.com/neomorfeo/fleetcare/internal/adapter/storage"
	"github.com/neomorfeo/fleetcare/internal/app"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "fleetcare.db")
	jwtSecret := envOrDefault("JWT_SECRET", "")
	uploadDir := envOrDefault("UPLOAD_DIR", "uploads")

	if jwtSecret == "" {
		jwtSecret = "dev-secret"
		slog.Warn("JWT_SECRET not set, using insecure development secret")
	}

	// --- Observability ---
	providers, err := otelad.Setup(ctx, otelad.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otelad.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	riverClient, err := riverad.Setup(ctx, db)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Error("river stop", "error", err)
		}
	}()

	publisher := otelad.NewTracingPublisher(riverad.NewPublisher(riverClient))
	requests := otelad.NewTracingRequestRepository(store.Requests())
	maintenance := otelad.NewTracingMaintenanceRepository(store.Maintenance())

	reports, err := storage.NewLocalStore(uploadDir, "/uploads")
	if err != nil {
		return fmt.Errorf("report store: %w", err)
	}

	// --- Application ---
	svcs := handler.Services{
		Requests:    app.NewRequestService(requests, store.Equipment(), publisher, fsm.NewRequestValidator()),
		Maintenance: app.NewMaintenanceService(maintenance, requests, store.Equipment(), store.Users(), publisher, fsm.NewMaintenanceValidator()),
		Equipment:   app.NewEquipmentService(store.Equipment()),
		Stats:       app.NewStatsService(requests, maintenance, store.Equipment()),
	}

	// --- Adapters (in) ---
	auth := handler.NewAuthenticator(jwtSecret, 24*time.Hour)

	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("fleetcare", otelchi.WithChiRoutes(router)))

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		api := humachi.New(r, huma.DefaultConfig("fleetcare", "0.1.0"))
		handler.Register(api, svcs)
		handler.RegisterExportRoutes(r, svcs, reports, slog.Default())
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("fleetcare listening", "port", port)
		slog.Info("api docs", "url", "http://localhost:"+port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
