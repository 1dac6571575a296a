package authclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finflow/internal/clients/authclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/validate", r.URL.Path)
		assert.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","valid":true,"user":{"id":7,"username":"alice","email":"alice@x.com"}}`))
	}))
	defer srv.Close()

	client := authclient.New(srv.URL, time.Second)

	profile, err := client.Validate(context.Background(), "the-token")
	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.ID)
	assert.Equal(t, "alice", profile.Username)
}

func TestValidate_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","error":"Invalid token"}`))
	}))
	defer srv.Close()

	client := authclient.New(srv.URL, time.Second)

	_, err := client.Validate(context.Background(), "bad-token")
	require.ErrorIs(t, err, authclient.ErrUnauthorized)
}

func TestValidate_DownstreamDead(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := authclient.New(srv.URL, time.Second)

	_, err := client.Validate(context.Background(), "any")
	require.ErrorIs(t, err, authclient.ErrUnavailable)
}

func TestValidate_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := authclient.New(srv.URL, time.Second)

	// Anything other than a definitive yes or no is a denial.
	_, err := client.Validate(context.Background(), "any")
	require.ErrorIs(t, err, authclient.ErrUnavailable)
}

func TestAuthenticate_AdaptsProfile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","valid":true,"user":{"id":3,"username":"bob","email":"bob@x.com"}}`))
	}))
	defer srv.Close()

	client := authclient.New(srv.URL, time.Second)

	user, err := client.Authenticate(context.Background(), "the-token")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.True(t, user.IsActive)
}
