package login_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finflow/internal/auth"
	"finflow/internal/auth/authtest"
	"finflow/internal/http_server/handlers/login"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (http.HandlerFunc, *authtest.Store) {
	t.Helper()

	store := authtest.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := auth.New(log, store, store, store, "secret", time.Hour, time.Hour, "http://localhost:3000")

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	return login.New(log, validator.New(), a), store
}

func doRequest(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	handler, _ := setup(t)

	rr := doRequest(t, handler, `{"username":"alice","password":"secret1"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var got login.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.NotEmpty(t, got.AccessToken)
	assert.Equal(t, "alice@x.com", got.User.Email)
}

func TestLogin_WithEmail(t *testing.T) {
	t.Parallel()

	handler, _ := setup(t)

	rr := doRequest(t, handler, `{"username":"alice@x.com","password":"secret1"}`)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	handler, _ := setup(t)

	rr := doRequest(t, handler, `{"username":"alice","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials")
}

func TestLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	handler, _ := setup(t)

	rr := doRequest(t, handler, `{"username":"nobody","password":"secret1"}`)

	// Same status and body as a wrong password.
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials")
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	handler, _ := setup(t)

	rr := doRequest(t, handler, `{"username":"alice"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
