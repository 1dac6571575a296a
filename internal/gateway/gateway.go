package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	resp "finflow/internal/lib/api/response"
	sl "finflow/internal/lib/logger"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

// NewRouter wires the pass-through proxies. The gateway adds nothing to
// requests beyond forwarding them: the Authorization header travels
// verbatim and every verification decision stays with the services.
func NewRouter(log *slog.Logger, authURL, financeURL string, healthTimeout time.Duration) (*chi.Mux, error) {
	const op = "gateway.NewRouter"

	auth, err := url.Parse(authURL)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid auth url: %w", op, err)
	}

	finance, err := url.Parse(financeURL)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid finance url: %w", op, err)
	}

	authProxy := newProxy(log, auth)
	financeProxy := newProxy(log, finance)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/api/auth/*", authProxy)

	for _, prefix := range []string{"/api/expenses", "/api/incomes", "/api/budgets", "/api/wishlist", "/api/reports"} {
		r.Handle(prefix, financeProxy)
		r.Handle(prefix+"/*", financeProxy)
	}

	r.Get("/health", healthHandler(log, map[string]string{
		"auth-service":    authURL,
		"finance-service": financeURL,
	}, healthTimeout))

	return r, nil
}

func newProxy(log *slog.Logger, target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("upstream request failed",
			slog.String("upstream", target.Host),
			sl.Err(err),
		)

		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, resp.Error("Service unavailable"))
	}

	return proxy
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func healthHandler(log *slog.Logger, upstreams map[string]string, timeout time.Duration) http.HandlerFunc {
	client := &http.Client{Timeout: timeout}

	return func(w http.ResponseWriter, r *http.Request) {
		services := map[string]string{"api-gateway": "healthy"}

		for name, baseURL := range upstreams {
			services[name] = probe(client, baseURL)
		}

		render.JSON(w, r, healthResponse{Status: "healthy", Services: services})
	}
}

func probe(client *http.Client, baseURL string) string {
	res, err := client.Get(baseURL + "/health")
	if err != nil {
		return "unhealthy"
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "unhealthy"
	}

	return "healthy"
}
