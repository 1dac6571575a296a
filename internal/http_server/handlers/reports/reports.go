package reports

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"finflow/internal/http_server/middleware/identity"
	resp "finflow/internal/lib/api/response"
	sl "finflow/internal/lib/logger"
	"finflow/internal/models"

	"github.com/go-chi/render"
)

type Store interface {
	MonthlySummary(ctx context.Context, userID int64, month string) (models.MonthlyReport, error)
}

// Monthly aggregates incomes and expenses for a YYYY-MM month, current
// month when the query parameter is absent.
func Monthly(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.Monthly"

		user, _ := identity.UserFromContext(r.Context())

		month := r.URL.Query().Get("month")
		if month == "" {
			month = time.Now().Format("2006-01")
		}
		if _, err := time.Parse("2006-01", month); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid month, expected YYYY-MM"))

			return
		}

		report, err := store.MonthlySummary(r.Context(), user.ID, month)
		if err != nil {
			log.Error("failed to build monthly report", slog.String("op", op), sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, report)
	}
}
