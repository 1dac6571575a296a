package register_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finflow/internal/auth"
	"finflow/internal/auth/authtest"
	"finflow/internal/http_server/handlers/register"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(store *authtest.Store) http.HandlerFunc {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := auth.New(log, store, store, store, "secret", time.Hour, time.Hour, "http://localhost:3000")

	return register.New(log, validator.New(), a)
}

func doRequest(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	rr := doRequest(t, newHandler(authtest.NewStore()),
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, rr.Code)

	var got register.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.NotEmpty(t, got.AccessToken)
	assert.Equal(t, "alice", got.User.Username)
}

func TestRegister_ShortPassword(t *testing.T) {
	t.Parallel()

	rr := doRequest(t, newHandler(authtest.NewStore()),
		`{"username":"alice","email":"alice@x.com","password":"ab"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least 6 characters")
}

func TestRegister_InvalidEmail(t *testing.T) {
	t.Parallel()

	rr := doRequest(t, newHandler(authtest.NewStore()),
		`{"username":"alice","email":"not-an-email","password":"secret1"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not a valid email")
}

func TestRegister_Conflict(t *testing.T) {
	t.Parallel()

	handler := newHandler(authtest.NewStore())
	body := `{"username":"alice","email":"alice@x.com","password":"secret1"}`

	require.Equal(t, http.StatusCreated, doRequest(t, handler, body).Code)

	rr := doRequest(t, handler, body)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "Username or email already exists")
}

func TestRegister_BadJSON(t *testing.T) {
	t.Parallel()

	rr := doRequest(t, newHandler(authtest.NewStore()), `{not json`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
