package gate

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridianpay/console/internal/shared"
)

func TestAllowed(t *testing.T) {
	support := &shared.Identity{
		UserType:    shared.UserTypeStaff,
		Role:        shared.RoleCustomerSupport,
		Permissions: []string{shared.PermUsersView, shared.PermAnalyticsView},
	}
	super := &shared.Identity{UserType: shared.UserTypeAdmin, Role: shared.RoleSuperAdmin}

	cases := []struct {
		name string
		id   *shared.Identity
		req  Requirement
		want bool
	}{
		{"anonymous never passes", nil, Requirement{}, false},
		{"empty requirement passes", support, Requirement{}, true},
		{"single permission held", support, Requirement{Permission: shared.PermUsersView}, true},
		{"single permission missing", support, Requirement{Permission: shared.PermUsersEdit}, false},
		{"any-of one held", support, Requirement{AnyOf: []string{shared.PermUsersEdit, shared.PermUsersView}}, true},
		{"any-of none held", support, Requirement{AnyOf: []string{shared.PermUsersEdit, shared.PermPlansEdit}}, false},
		{"all-of partially held", support, Requirement{AllOf: []string{shared.PermUsersView, shared.PermUsersEdit}}, false},
		{"all-of fully held", support, Requirement{AllOf: []string{shared.PermUsersView, shared.PermAnalyticsView}}, true},
		{"super-only blocks staff", support, Requirement{SuperOnly: true}, false},
		{"super-only passes super", super, Requirement{SuperOnly: true}, true},
		{"super bypasses permission set", super, Requirement{AllOf: []string{shared.PermAdminsEdit, shared.PermStaffEdit}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.id, tc.req))
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{" Users.View ", "users.view", "PLANS.EDIT", "", "  "})
	sort.Strings(got)
	assert.Equal(t, []string{"plans.edit", "users.view"}, got)
}

func TestMiddlewareForbidsWithoutPermission(t *testing.T) {
	mw := Middleware{}
	handler := mw.Require(shared.PermUsersEdit)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	viewer := &shared.Identity{ID: "u1", Permissions: []string{shared.PermUsersView}}
	sess := &shared.Session{}
	sess.SetCredentials("tok", *viewer)

	req := httptest.NewRequest(http.MethodGet, "/users/new", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewarePassesWithPermission(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireAny(shared.PermUsersView, shared.PermUsersEdit)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	sess := &shared.Session{}
	sess.SetCredentials("tok", shared.Identity{ID: "u1", Permissions: []string{shared.PermUsersView}})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
