package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"finflow/internal/models"
)

var (
	// ErrUnauthorized means the auth service definitively rejected the token.
	ErrUnauthorized = errors.New("token rejected by auth service")
	// ErrUnavailable means no definitive answer was obtained. Callers must
	// treat it as a denial, never as success.
	ErrUnavailable = errors.New("auth service unavailable")
)

// Client asks the auth service to verify a bearer token instead of
// verifying it locally, so the finance service never needs the signing
// secret.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type validateResponse struct {
	Valid bool           `json:"valid"`
	User  models.Profile `json:"user"`
}

// Authenticate adapts Validate to the identity middleware contract.
// A profile returned by the auth service is an active user by
// definition: the auth service already applied its store re-check.
func (c *Client) Authenticate(ctx context.Context, rawToken string) (models.User, error) {
	p, err := c.Validate(ctx, rawToken)
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		IsActive:  true,
		CreatedAt: p.CreatedAt,
	}, nil
}

// Validate forwards the raw token to the auth service's validate
// endpoint. The call is never retried: a transport failure comes back
// as ErrUnavailable and stays a denial.
func (c *Client) Validate(ctx context.Context, rawToken string) (models.Profile, error) {
	const op = "clients.authclient.Validate"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/validate", nil)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+rawToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var vr validateResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil || !vr.Valid {
			return models.Profile{}, ErrUnauthorized
		}
		return vr.User, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return models.Profile{}, ErrUnauthorized
	default:
		return models.Profile{}, fmt.Errorf("%s: unexpected status %d: %w", op, resp.StatusCode, ErrUnavailable)
	}
}
