package staff

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

type fakeBackend struct {
	mu       sync.Mutex
	staff    []Staff
	created  []CreateInput
	patches  []map[string]any
	conflict bool
}

func (b *fakeBackend) handler() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/console/staff", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.staff)
	})
	mux.Get("/console/staff/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, m := range b.staff {
			if m.ID == chi.URLParam(r, "id") {
				writeJSON(w, m)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.Post("/console/staff", func(w http.ResponseWriter, r *http.Request) {
		if b.conflict {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"Email already registered","errors":{"email":"This email is already in use"}}`))
			return
		}
		var input CreateInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		b.mu.Lock()
		b.created = append(b.created, input)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, Staff{ID: "new", Email: input.Email})
	})
	mux.Patch("/console/staff/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		_ = json.NewDecoder(r.Body).Decode(&patch)
		b.mu.Lock()
		b.patches = append(b.patches, patch)
		b.mu.Unlock()
		writeJSON(w, map[string]string{"message": "updated"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestRouter(t *testing.T, backendURL string) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(api.NewClient(backendURL)), templates, gate.Middleware{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			sess.SetCredentials("tok", shared.Identity{
				ID:       "adm-1",
				UserType: shared.UserTypeAdmin,
				Role:     shared.RoleSuperAdmin,
			})
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/staff", handler.MountRoutes)
	return r
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedBackend() *fakeBackend {
	return &fakeBackend{
		staff: []Staff{
			{
				ID: "stf-1", Email: "sup@meridian.test", Name: "Support",
				Role:        shared.RoleCustomerSupport,
				Permissions: []string{shared.PermUsersView},
				IsActive:    true,
			},
		},
	}
}

func TestCreateRequiresPassword(t *testing.T) {
	backend := seedBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	router := newTestRouter(t, srv.URL)

	rec := postForm(router, "/staff", url.Values{
		"name":        {"New Person"},
		"email":       {"new@meridian.test"},
		"role":        {"customer_support"},
		"permissions": {"users.view"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password is required")
	assert.Empty(t, backend.created)
}

func TestCreateNormalizesPermissions(t *testing.T) {
	backend := seedBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	router := newTestRouter(t, srv.URL)

	rec := postForm(router, "/staff", url.Values{
		"name":        {"New Person"},
		"email":       {"new@meridian.test"},
		"password":    {"longenough"},
		"role":        {"customer_support"},
		"permissions": {"Users.View ", "users.view", "plans.view"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, backend.created, 1)
	perms := backend.created[0].Permissions
	assert.Len(t, perms, 2)
	assert.Contains(t, perms, "users.view")
	assert.Contains(t, perms, "plans.view")
}

func TestCreateConflictShowsEmailError(t *testing.T) {
	backend := seedBackend()
	backend.conflict = true
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	router := newTestRouter(t, srv.URL)

	rec := postForm(router, "/staff", url.Values{
		"name":     {"Dupe"},
		"email":    {"sup@meridian.test"},
		"password": {"longenough"},
		"role":     {"customer_support"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "This email is already in use")
}

func TestUpdateSendsOnlyChangedFields(t *testing.T) {
	backend := seedBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	router := newTestRouter(t, srv.URL)

	rec := postForm(router, "/staff/stf-1", url.Values{
		"name":        {"Support"},
		"email":       {"sup@meridian.test"},
		"role":        {"customer_support"},
		"permissions": {"users.view", "plans.view"},
		"is_active":   {"true"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, backend.patches, 1)
	patch := backend.patches[0]
	assert.Contains(t, patch, "permissions")
	assert.NotContains(t, patch, "name")
	assert.NotContains(t, patch, "email")
	assert.NotContains(t, patch, "isActive")
}
