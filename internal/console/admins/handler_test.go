package admins

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

func newTestRouter(t *testing.T, backendURL string, id shared.Identity) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(api.NewClient(backendURL)), templates, gate.Middleware{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			sess.SetCredentials("tok", id)
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/admins", handler.MountRoutes)
	return r
}

func fakeBackend() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/console/admins", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Admin{
			{ID: "adm-1", Email: "root@meridian.test", Name: "Root", Role: shared.RoleSuperAdmin},
		})
	})
	return mux
}

func TestListVisibleToSuperAdmin(t *testing.T) {
	srv := httptest.NewServer(fakeBackend())
	defer srv.Close()

	router := newTestRouter(t, srv.URL, shared.Identity{
		ID:       "adm-1",
		UserType: shared.UserTypeAdmin,
		Role:     shared.RoleSuperAdmin,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admins", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "root@meridian.test")
}

func TestEveryRouteBlockedForNonSuper(t *testing.T) {
	srv := httptest.NewServer(fakeBackend())
	defer srv.Close()

	// A plain admin role on an admin-type account is not enough.
	router := newTestRouter(t, srv.URL, shared.Identity{
		ID:       "adm-2",
		UserType: shared.UserTypeAdmin,
		Role:     shared.RoleAdmin,
	})

	for _, path := range []string{"/admins", "/admins/new", "/admins/adm-1/edit", "/admins/adm-1/delete"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code, "expected 403 for %s", path)
	}
}

func TestStaffWithSuperRoleStillBlocked(t *testing.T) {
	srv := httptest.NewServer(fakeBackend())
	defer srv.Close()

	router := newTestRouter(t, srv.URL, shared.Identity{
		ID:       "stf-1",
		UserType: shared.UserTypeStaff,
		Role:     shared.RoleSuperAdmin,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admins", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
