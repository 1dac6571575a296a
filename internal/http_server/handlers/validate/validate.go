package validate

import (
	"net/http"

	"finflow/internal/http_server/middleware/identity"
	resp "finflow/internal/lib/api/response"
	"finflow/internal/models"

	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Valid bool           `json:"valid"`
	User  models.Profile `json:"user"`
}

// New is the service-to-service verification endpoint. Other services
// forward a raw bearer token here and trust the yes/no answer instead
// of holding the signing secret themselves.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := identity.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Invalid token"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Valid:    true,
			User:     user.Profile(),
		})
	}
}
