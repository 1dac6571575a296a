package profile

import (
	"net/http"

	"finflow/internal/http_server/middleware/identity"
	resp "finflow/internal/lib/api/response"
	"finflow/internal/models"

	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	User models.Profile `json:"user"`
}

// New returns the public fields of the authenticated user. The identity
// middleware has already re-checked the account against the store.
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
			User:     user.Profile(),
		})
	}
}
