package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finflow/internal/auth"
	"finflow/internal/config"
	changepassword "finflow/internal/http_server/handlers/change_password"
	forgotpassword "finflow/internal/http_server/handlers/forgot_password"
	"finflow/internal/http_server/handlers/health"
	"finflow/internal/http_server/handlers/login"
	"finflow/internal/http_server/handlers/profile"
	"finflow/internal/http_server/handlers/register"
	resetpassword "finflow/internal/http_server/handlers/reset_password"
	tokenvalidate "finflow/internal/http_server/handlers/validate"
	"finflow/internal/http_server/middleware/identity"
	"finflow/internal/http_server/middleware/ratelimit"
	"finflow/internal/lib/logger"
	"finflow/internal/rabbitmq"
	"finflow/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

func main() {
	cfg := config.MustLoad[config.Auth]("./config/auth.yaml")

	log := logger.Setup(cfg.Env)

	log.Info("starting auth service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg.Postgres, "auth")
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	authService := auth.New(
		log,
		storage,
		storage,
		msgBroker,
		cfg.Tokens.JWTSecret,
		cfg.Tokens.AccessTokenTTL,
		cfg.Tokens.ResetTokenTTL,
		cfg.FrontendURL,
	)

	router := setupRouter(log, authService, storage)

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

	log.Info("Auth service stopped")
}

func setupRouter(
	log *slog.Logger,
	authService *auth.Auth,
	storage *postgres.Storage,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(ratelimit.Register()).Post("/register",
			register.New(log, validate, authService),
		)
		r.With(ratelimit.Login()).Post("/login",
			login.New(log, validate, authService),
		)
		r.With(ratelimit.ForgotPassword()).Post("/forgot-password",
			forgotpassword.New(log, validate, authService),
		)
		r.With(ratelimit.ResetPassword()).Post("/reset-password",
			resetpassword.New(log, validate, authService),
		)

		r.Group(func(r chi.Router) {
			r.Use(identity.New(log, authService))

			r.Get("/profile", profile.New())
			r.Get("/validate", tokenvalidate.New())
			r.Post("/change-password", changepassword.New(log, validate, authService))
		})
	})

	r.Get("/health", health.New("auth-service", storage))

	return r
}
