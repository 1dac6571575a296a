package incomes

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
	Incomes(ctx context.Context, userID int64) ([]models.Income, error)
	AddIncome(ctx context.Context, in models.Income) (models.Income, error)
	UpdateIncome(ctx context.Context, in models.Income) (models.Income, error)
	DeleteIncome(ctx context.Context, userID, id int64) error
}

type Request struct {
	Amount             float64 `json:"amount" validate:"required"`
	Source             string  `json:"source" validate:"required"`
	Date               string  `json:"date" validate:"required,datetime=2006-01-02"`
	Recurring          bool    `json:"recurring"`
	RecurringFrequency *string `json:"recurring_frequency"`
	Notes              *string `json:"notes"`
}

func List(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.incomes.List"

		user, _ := identity.UserFromContext(r.Context())

		incomes, err := store.Incomes(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to list incomes", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, incomes)
	}
}

func Create(log *slog.Logger, validate *validator.Validate, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.incomes.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, _ := identity.UserFromContext(r.Context())

		req, ok := decode(w, r, log, validate)
		if !ok {
			return
		}

		created, err := store.AddIncome(r.Context(), req.toModel(user.ID, 0))
		if err != nil {
			log.Error("failed to add income", sl.Err(err))

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
		const op = "handlers.incomes.Update"

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

		updated, err := store.UpdateIncome(r.Context(), req.toModel(user.ID, id))
		if err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Income not found"))

				return
			}

			log.Error("failed to update income", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, updated)
	}
}

func Delete(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.incomes.Delete"

		user, _ := identity.UserFromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid id"))

			return
		}

		if err := store.DeleteIncome(r.Context(), user.ID, id); err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Income not found"))

				return
			}

			log.Error("failed to delete income", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, resp.Info("Income deleted successfully"))
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

func (req Request) toModel(userID, id int64) models.Income {
	return models.Income{
		ID:                 id,
		UserID:             userID,
		Amount:             req.Amount,
		Source:             req.Source,
		Date:               req.Date,
		Recurring:          req.Recurring,
		RecurringFrequency: req.RecurringFrequency,
		Notes:              req.Notes,
	}
}
