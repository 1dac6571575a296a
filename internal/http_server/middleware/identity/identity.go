package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"finflow/internal/clients/authclient"
	resp "finflow/internal/lib/api/response"
	jwtlib "finflow/internal/lib/jwt"
	sl "finflow/internal/lib/logger"
	"finflow/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

var ErrMissingToken = errors.New("missing authorization token")

// Authenticator resolves a raw bearer token into a user. The auth
// service implements it locally; the finance service implements it by
// calling back into the auth service.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (models.User, error)
}

type ctxKey struct{}

// New builds the pipeline stage that runs verification before the
// handler and injects the resolved user into the request context.
func New(log *slog.Logger, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.identity"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, err := TokenFromHeader(r)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Missing authorization token"))

				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, jwtlib.ErrTokenExpired):
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, resp.Error("Token has expired"))
				case errors.Is(err, authclient.ErrUnavailable):
					log.Error("verification call failed", sl.Err(err))

					render.Status(r, http.StatusServiceUnavailable)
					render.JSON(w, r, resp.Error("Service unavailable"))
				default:
					log.Warn("token rejected", sl.Err(err))

					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, resp.Error("Invalid token"))
				}

				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), ctxKey{}, user),
			))
		})
	}
}

// TokenFromHeader extracts the bearer token from the Authorization
// header, before any decode attempt.
func TokenFromHeader(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(models.User)
	return user, ok
}
