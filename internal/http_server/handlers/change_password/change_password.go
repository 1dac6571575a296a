package changepassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finflow/internal/auth"
	"finflow/internal/http_server/middleware/identity"
	resp "finflow/internal/lib/api/response"
	sl "finflow/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	CurrentPass string `json:"current_password" validate:"required"`
	NewPass     string `json:"new_password" validate:"required,min=6"`
}

type Response struct {
	resp.Response
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.change_password.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := identity.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Invalid token"))

			return
		}

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := authService.ChangePassword(ctx, user.ID, req.CurrentPass, req.NewPass); err != nil {
			if errors.Is(err, auth.ErrWrongPassword) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Current password is incorrect"))

				return
			}

			log.Error("failed to change password", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("password changed", slog.Int64("uid", user.ID))

		render.JSON(w, r, Response{
			Response: resp.Info("Password changed successfully"),
		})
	}
}
