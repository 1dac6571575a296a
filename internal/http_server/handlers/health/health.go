package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// New reports healthy while the store answers a ping, degraded otherwise.
func New(service string, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, Response{Status: "unhealthy", Service: service})

			return
		}

		render.JSON(w, r, Response{Status: "healthy", Service: service})
	}
}
