package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finflow/internal/clients/authclient"
	"finflow/internal/config"
	"finflow/internal/http_server/handlers/budgets"
	"finflow/internal/http_server/handlers/expenses"
	"finflow/internal/http_server/handlers/health"
	"finflow/internal/http_server/handlers/incomes"
	"finflow/internal/http_server/handlers/reports"
	"finflow/internal/http_server/handlers/wishlist"
	"finflow/internal/http_server/middleware/identity"
	"finflow/internal/lib/logger"
	"finflow/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

func main() {
	cfg := config.MustLoad[config.Finance]("./config/finance.yaml")

	log := logger.Setup(cfg.Env)

	log.Info("starting finance service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg.Postgres, "finance")
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	// Every authorized request delegates token verification to the auth
	// service; the signing secret never reaches this process.
	authClient := authclient.New(cfg.AuthService.URL, cfg.AuthService.Timeout)

	router := setupRouter(log, authClient, storage)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Finance service stopped")
}

func setupRouter(
	log *slog.Logger,
	authClient *authclient.Client,
	storage *postgres.Storage,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", health.New("finance-service", storage))

	r.Group(func(r chi.Router) {
		r.Use(identity.New(log, authClient))

		r.Route("/api/expenses", func(r chi.Router) {
			r.Get("/", expenses.List(log, storage))
			r.Post("/", expenses.Create(log, validate, storage))
			r.Put("/{id}", expenses.Update(log, validate, storage))
			r.Delete("/{id}", expenses.Delete(log, storage))
		})

		r.Route("/api/incomes", func(r chi.Router) {
			r.Get("/", incomes.List(log, storage))
			r.Post("/", incomes.Create(log, validate, storage))
			r.Put("/{id}", incomes.Update(log, validate, storage))
			r.Delete("/{id}", incomes.Delete(log, storage))
		})

		r.Route("/api/budgets", func(r chi.Router) {
			r.Get("/", budgets.List(log, storage))
			r.Post("/", budgets.Create(log, validate, storage))
			r.Put("/{id}", budgets.Update(log, validate, storage))
			r.Delete("/{id}", budgets.Delete(log, storage))
		})

		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", wishlist.List(log, storage))
			r.Post("/", wishlist.Create(log, validate, storage))
			r.Put("/{id}", wishlist.Update(log, validate, storage))
			r.Delete("/{id}", wishlist.Delete(log, storage))
		})

		r.Get("/api/reports/monthly", reports.Monthly(log, storage))
	})

	return r
}
