package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"finflow/internal/auth"
	"finflow/internal/auth/authtest"
	jwtlib "finflow/internal/lib/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuth(store *authtest.Store) *auth.Auth {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return auth.New(log, store, store, store, testSecret, time.Hour, time.Hour, "http://localhost:3000")
}

func TestRegister_IssuesWorkingToken(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	user, token, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtlib.ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	// Same username, different email.
	_, _, err = a.Register(context.Background(), "alice", "other@x.com", "secret1", nil, nil)
	require.ErrorIs(t, err, auth.ErrUserExists)

	// Same email, different username.
	_, _, err = a.Register(context.Background(), "bob", "alice@x.com", "secret1", nil, nil)
	require.ErrorIs(t, err, auth.ErrUserExists)

	assert.Equal(t, 1, store.UserCount())
}

func TestLogin_GenericFailure(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	// Wrong password and unknown user must be the same error value so
	// the handler cannot leak which one happened.
	_, _, wrongPass := a.Login(context.Background(), "alice", "wrong")
	_, _, unknown := a.Login(context.Background(), "nobody", "secret1")

	require.ErrorIs(t, wrongPass, auth.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, auth.ErrInvalidCredentials)
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	_, _, err = a.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	_, _, err = a.Login(context.Background(), "alice@x.com", "secret1")
	require.NoError(t, err)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	err := a.ForgotPassword(context.Background(), "nobody@x.com")
	require.NoError(t, err)

	assert.Equal(t, 0, store.TokenCount())
	assert.Empty(t, store.Messages)
}

func TestForgotPassword_KnownEmail(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	err = a.ForgotPassword(context.Background(), "alice@x.com")
	require.NoError(t, err)

	require.Equal(t, 1, store.TokenCount())
	require.Len(t, store.Messages, 1)
	assert.Equal(t, "alice@x.com", store.Messages[0].Email)
	assert.Contains(t, store.Messages[0].Link, "/reset-password?token=")
}

func TestForgotPassword_PublishFailure(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	store.PublishErr = errors.New("broker down")
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	err = a.ForgotPassword(context.Background(), "alice@x.com")
	require.Error(t, err)
}

func TestResetPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	require.NoError(t, a.ForgotPassword(context.Background(), "alice@x.com"))
	token := tokenFromLink(t, store.Messages[0].Link)

	require.NoError(t, a.ResetPassword(context.Background(), token, "newpass1"))

	// The old password no longer works, the new one does.
	_, _, err = a.Login(context.Background(), "alice", "secret1")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, _, err = a.Login(context.Background(), "alice", "newpass1")
	require.NoError(t, err)

	// The token is single-use.
	err = a.ResetPassword(context.Background(), token, "another1")
	require.ErrorIs(t, err, auth.ErrInvalidResetToken)
}

func TestResetPassword_Expired(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	require.NoError(t, a.ForgotPassword(context.Background(), "alice@x.com"))
	token := tokenFromLink(t, store.Messages[0].Link)

	store.ExpireToken(token)

	err = a.ResetPassword(context.Background(), token, "newpass1")
	require.ErrorIs(t, err, auth.ErrInvalidResetToken)
}

func TestResetPassword_ConcurrentRedemption(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	require.NoError(t, a.ForgotPassword(context.Background(), "alice@x.com"))
	token := tokenFromLink(t, store.Messages[0].Link)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.ResetPassword(context.Background(), token, "newpass1")
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, auth.ErrInvalidResetToken):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one redemption must win")
	assert.Equal(t, 1, rejected)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	user, _, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	err = a.ChangePassword(context.Background(), user.ID, "wrong", "newpass1")
	require.ErrorIs(t, err, auth.ErrWrongPassword)

	require.NoError(t, a.ChangePassword(context.Background(), user.ID, "secret1", "newpass1"))

	_, _, err = a.Login(context.Background(), "alice", "newpass1")
	require.NoError(t, err)
}

func TestAuthenticate_RejectsDeactivated(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	user, token, err := a.Register(context.Background(), "alice", "alice@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	got, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// The signature is still valid, but the re-check against the store
	// must reject a disabled account.
	store.Deactivate(user.ID)

	_, err = a.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, auth.ErrUserInactive)
}

func TestAuthenticate_TokenErrors(t *testing.T) {
	t.Parallel()

	store := authtest.NewStore()
	a := newAuth(store)

	_, err := a.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, jwtlib.ErrTokenInvalid)
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()

	_, token, found := strings.Cut(link, "token=")
	require.True(t, found, "reset link must carry a token: %s", link)

	return token
}
