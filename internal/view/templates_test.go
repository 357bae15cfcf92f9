package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
)

func TestEngineParsesAllPages(t *testing.T) {
	_, err := NewEngine()
	require.NoError(t, err)
}

func TestRenderLoginPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{
		Title: "Sign in",
		Data: map[string]any{
			"Form":   struct{ Email, UserType string }{Email: "a@b.test", UserType: "staff"},
			"Errors": map[string]string{"general": "Invalid email or password"},
		},
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, "Invalid email or password")
	assert.Contains(t, body, "a@b.test")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestPermissionHelpersDriveNav(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/settings.html", TemplateData{
		Title:       "Settings",
		CurrentPath: "/settings/password",
		User: &shared.Identity{
			ID:          "stf-1",
			Name:        "Support",
			UserType:    shared.UserTypeStaff,
			Role:        shared.RoleCustomerSupport,
			Permissions: []string{shared.PermUsersView},
		},
		Data: map[string]any{"Errors": map[string]string{}},
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/users"`)
	assert.NotContains(t, body, `href="/staff"`)
	assert.NotContains(t, body, `href="/admins"`)
}

func TestForbiddenRendersStyledPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	guarded := gate.Middleware{Forbidden: engine.Forbidden()}.Require(shared.PermUsersView)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("guarded handler must not run")
		}),
	)

	sess := &shared.Session{}
	sess.SetCredentials("tok", shared.Identity{
		ID:       "stf-1",
		UserType: shared.UserTypeStaff,
		Role:     shared.RoleCustomerSupport,
	})
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Access denied")
	assert.Contains(t, body, "Back to dashboard")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$99", formatMoney(99))
	assert.Equal(t, "$99.50", formatMoney(99.5))
	assert.Equal(t, "$0", formatMoney(0))
}
