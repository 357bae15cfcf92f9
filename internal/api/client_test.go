package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/console/internal/shared"
)

func sessionContext(token string) context.Context {
	sess := &shared.Session{}
	sess.SetCredentials(token, shared.Identity{ID: "u1"})
	return shared.ContextWithSession(context.Background(), sess)
}

func TestClientInjectsSessionBearer(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL)
	var out map[string]bool
	require.NoError(t, client.Get(sessionContext("token-abc"), "/console/users", &out))
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.True(t, out["ok"])
}

func TestClientFallsBackToServiceToken(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, WithServiceToken("svc-token"))
	require.NoError(t, client.Get(context.Background(), "/console/analytics/overview", nil))
	assert.Equal(t, "Bearer svc-token", gotAuth)
}

func TestClientNormalizesErrorEnvelope(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Email already registered","errors":{"email":"This email is already in use"}}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL)
	err := client.Post(sessionContext("tok"), "/console/users", map[string]string{"email": "a@b.test"}, nil)
	require.Error(t, err)

	assert.True(t, IsConflict(err))
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Email already registered", apiErr.Message)
	assert.Equal(t, "This email is already in use", FieldErrors(err)["email"])
}

func TestClientUnauthorizedClearsSession(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid or expired token"}`))
	}))
	defer backend.Close()

	sess := &shared.Session{}
	sess.SetCredentials("stale-token", shared.Identity{ID: "u1"})
	ctx := shared.ContextWithSession(context.Background(), sess)

	client := NewClient(backend.URL)
	err := client.Get(ctx, "/console/users", nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	// The session is wiped in place, so every later check this request
	// sees "logged out".
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())
}

func TestClientMalformedSuccessBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"broken`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL)
	var out map[string]any
	err := client.Get(sessionContext("tok"), "/console/users", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMalformedResponse)
}

func TestClientPlainTextErrorBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream blew up"))
	}))
	defer backend.Close()

	client := NewClient(backend.URL)
	err := client.Get(sessionContext("tok"), "/console/plans", nil)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream blew up", apiErr.Message)
	assert.Equal(t, "The service is temporarily unavailable. Please try again later.", shared.UserSafeMessage(err))
}
