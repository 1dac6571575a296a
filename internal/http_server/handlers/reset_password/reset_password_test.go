package resetpassword_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finflow/internal/auth"
	"finflow/internal/auth/authtest"
	resetpassword "finflow/internal/http_server/handlers/reset_password"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (http.HandlerFunc, *auth.Auth, *authtest.Store) {
	t.Helper()

	store := authtest.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := auth.New(log, store, store, store, "secret", time.Hour, time.Hour, "http://localhost:3000")

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	return resetpassword.New(log, validator.New(), a), a, store
}

func issueToken(t *testing.T, a *auth.Auth, store *authtest.Store) string {
	t.Helper()

	require.NoError(t, a.ForgotPassword(context.Background(), "alice@x.com"))

	link := store.Messages[len(store.Messages)-1].Link
	_, token, found := strings.Cut(link, "token=")
	require.True(t, found)

	return token
}

func doRequest(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func TestResetPassword_Success(t *testing.T) {
	t.Parallel()

	handler, a, store := setup(t)
	token := issueToken(t, a, store)

	rr := doRequest(t, handler, fmt.Sprintf(`{"token":"%s","new_password":"newpass1"}`, token))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Password reset successfully")

	// New password works from here on.
	_, _, err := a.Login(context.Background(), "alice", "newpass1")
	require.NoError(t, err)
}

func TestResetPassword_ReusedToken(t *testing.T) {
	t.Parallel()

	handler, a, store := setup(t)
	token := issueToken(t, a, store)
	body := fmt.Sprintf(`{"token":"%s","new_password":"newpass1"}`, token)

	require.Equal(t, http.StatusOK, doRequest(t, handler, body).Code)

	rr := doRequest(t, handler, body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid or expired token")
}

func TestResetPassword_UnknownToken(t *testing.T) {
	t.Parallel()

	handler, _, _ := setup(t)

	rr := doRequest(t, handler, `{"token":"never-issued","new_password":"newpass1"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid or expired token")
}

func TestResetPassword_ShortPassword(t *testing.T) {
	t.Parallel()

	handler, a, store := setup(t)
	token := issueToken(t, a, store)

	rr := doRequest(t, handler, fmt.Sprintf(`{"token":"%s","new_password":"ab"}`, token))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least 6 characters")
}
