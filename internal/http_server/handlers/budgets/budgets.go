package budgets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"finflow/internal/http_server/middleware/identity"
	resp "finflow/internal/lib/api/response"
	sl "finflow/internal/lib/logger"
	"finflow/internal/models"
	"finflow/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Store interface {
	Budgets(ctx context.Context, userID int64) ([]models.Budget, error)
	AddBudget(ctx context.Context, b models.Budget) (models.Budget, error)
	UpdateBudget(ctx context.Context, b models.Budget) (models.Budget, error)
	DeleteBudget(ctx context.Context, userID, id int64) error
}

type Request struct {
	Category string  `json:"category" validate:"required"`
	Amount   float64 `json:"amount" validate:"required"`
	Month    string  `json:"month" validate:"required,datetime=2006-01"`
	Spent    float64 `json:"spent"`
	Notes    *string `json:"notes"`
}

func List(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.List"

		user, _ := identity.UserFromContext(r.Context())

		budgets, err := store.Budgets(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to list budgets", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, budgets)
	}
}

func Create(log *slog.Logger, validate *validator.Validate, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, _ := identity.UserFromContext(r.Context())

		req, ok := decode(w, r, log, validate)
		if !ok {
			return
		}

		created, err := store.AddBudget(r.Context(), req.toModel(user.ID, 0))
		if err != nil {
			log.Error("failed to add budget", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func Update(log *slog.Logger, validate *validator.Validate, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, _ := identity.UserFromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid id"))

			return
		}

		req, ok := decode(w, r, log, validate)
		if !ok {
			return
		}

		updated, err := store.UpdateBudget(r.Context(), req.toModel(user.ID, id))
		if err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Budget not found"))

				return
			}

			log.Error("failed to update budget", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, updated)
	}
}

func Delete(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.Delete"

		user, _ := identity.UserFromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid id"))

			return
		}

		if err := store.DeleteBudget(r.Context(), user.ID, id); err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Budget not found"))

				return
			}

			log.Error("failed to delete budget", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, resp.Info("Budget deleted successfully"))
	}
}

func decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate) (Request, bool) {
	var req Request

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("Failed to decode request body", sl.Err(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("Failed to decode request"))

		return Request{}, false
	}

	if err := validate.Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)

		log.Error("Invalid request", sl.Err(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.ValidationError(validateErr))

		return Request{}, false
	}

	return req, true
}

func (req Request) toModel(userID, id int64) models.Budget {
	return models.Budget{
		ID:       id,
		UserID:   userID,
		Category: req.Category,
		Amount:   req.Amount,
		Month:    req.Month,
		Spent:    req.Spent,
		Notes:    req.Notes,
	}
}
