package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

type loginAttempt struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := chi.NewRouter()
	mux.Post("/console/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginAttempt
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-xyz",
			"user": shared.Identity{
				ID:       "stf-1",
				Email:    req.Email,
				Name:     "Support",
				Role:     shared.RoleCustomerSupport,
				UserType: req.UserType,
			},
		})
	})
	return httptest.NewServer(mux)
}

// sessionCapture lets tests inspect the session a request produced.
type sessionCapture struct {
	sess *shared.Session
}

func newTestRouter(t *testing.T, backendURL string, capture *sessionCapture) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(api.NewClient(backendURL)), templates)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			if capture != nil {
				capture.sess = sess
			}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/auth", func(r chi.Router) {
		handler.MountRoutes(r, nil)
	})
	return r
}

func postLogin(router http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestShowLoginRendersForm(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	router := newTestRouter(t, backend.URL, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="email"`)
	assert.Contains(t, body, `name="user_type"`)
}

func TestLoginSuccessStoresCredentialsAndRedirects(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	capture := &sessionCapture{}
	router := newTestRouter(t, backend.URL, capture)

	rec := postLogin(router, url.Values{
		"email":     {"sup@meridian.test"},
		"password":  {"correct-horse"},
		"user_type": {"staff"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	require.NotNil(t, capture.sess)
	assert.Equal(t, "token-xyz", capture.sess.Token())
	require.NotNil(t, capture.sess.User())
	assert.Equal(t, "stf-1", capture.sess.User().ID)
}

func TestLoginBadCredentialsShowsGenericMessage(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	capture := &sessionCapture{}
	router := newTestRouter(t, backend.URL, capture)

	rec := postLogin(router, url.Values{
		"email":     {"sup@meridian.test"},
		"password":  {"wrong"},
		"user_type": {"staff"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Empty(t, capture.sess.Token())
	// The entered password never echoes back.
	assert.NotContains(t, rec.Body.String(), "wrong")
}

func TestLoginValidationFailureSkipsBackend(t *testing.T) {
	// Backend that fails the test if touched.
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be called for invalid form input")
	}))
	defer backend.Close()
	router := newTestRouter(t, backend.URL, nil)

	rec := postLogin(router, url.Values{
		"email":     {"not-an-email"},
		"password":  {"whatever"},
		"user_type": {"staff"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsSessionAndRedirects(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()
	capture := &sessionCapture{}
	router := newTestRouter(t, backend.URL, capture)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Nil(t, capture.sess.User())
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	protected := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), &shared.Session{}))
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}
