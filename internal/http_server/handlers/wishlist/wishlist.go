package wishlist

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
	WishlistItems(ctx context.Context, userID int64) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, w models.WishlistItem) (models.WishlistItem, error)
	UpdateWishlistItem(ctx context.Context, w models.WishlistItem) (models.WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, userID, id int64) error
}

type Request struct {
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"required"`
	Priority   string  `json:"priority" validate:"required,oneof=low medium high"`
	URL        *string `json:"url"`
	Notes      *string `json:"notes"`
	TargetDate *string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	Saved      float64 `json:"saved"`
}

func List(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wishlist.List"

		user, _ := identity.UserFromContext(r.Context())

		items, err := store.WishlistItems(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to list wishlist items", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, items)
	}
}

func Create(log *slog.Logger, validate *validator.Validate, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wishlist.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, _ := identity.UserFromContext(r.Context())

		req, ok := decode(w, r, log, validate)
		if !ok {
			return
		}

		created, err := store.AddWishlistItem(r.Context(), req.toModel(user.ID, 0))
		if err != nil {
			log.Error("failed to add wishlist item", sl.Err(err))

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
		const op = "handlers.wishlist.Update"

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

		updated, err := store.UpdateWishlistItem(r.Context(), req.toModel(user.ID, id))
		if err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Wishlist item not found"))

				return
			}

			log.Error("failed to update wishlist item", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, updated)
	}
}

func Delete(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wishlist.Delete"

		user, _ := identity.UserFromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid id"))

			return
		}

		if err := store.DeleteWishlistItem(r.Context(), user.ID, id); err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Wishlist item not found"))

				return
			}

			log.Error("failed to delete wishlist item", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, resp.Info("Wishlist item deleted successfully"))
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

func (req Request) toModel(userID, id int64) models.WishlistItem {
	return models.WishlistItem{
		ID:         id,
		UserID:     userID,
		Name:       req.Name,
		Price:      req.Price,
		Priority:   req.Priority,
		URL:        req.URL,
		Notes:      req.Notes,
		TargetDate: req.TargetDate,
		Saved:      req.Saved,
	}
}
