package stubapi

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/auth"
	"github.com/meridianpay/console/internal/console/staff"
	"github.com/meridianpay/console/internal/console/users"
	"github.com/meridianpay/console/internal/shared"
)

func newTestClient(t *testing.T) *api.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(logger, "test-secret").Handler())
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL)
}

func adminContext(t *testing.T, client *api.Client) context.Context {
	t.Helper()
	result, err := auth.NewService(client).Login(context.Background(), "admin@meridian.test", DefaultPassword, shared.UserTypeAdmin)
	require.NoError(t, err)

	sess := &shared.Session{}
	sess.SetCredentials(result.AccessToken, result.User)
	return shared.ContextWithSession(context.Background(), sess)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	client := newTestClient(t)
	ctx := adminContext(t, client)

	me, err := auth.NewService(client).CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@meridian.test", me.Email)
	assert.True(t, me.IsSuperAdmin())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	client := newTestClient(t)

	_, err := auth.NewService(client).Login(context.Background(), "admin@meridian.test", "nope", shared.UserTypeAdmin)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestLoginRejectsWrongUserType(t *testing.T) {
	client := newTestClient(t)

	_, err := auth.NewService(client).Login(context.Background(), "admin@meridian.test", DefaultPassword, shared.UserTypeStaff)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	client := newTestClient(t)

	_, err := users.NewService(client).List(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestUserLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := adminContext(t, client)
	svc := users.NewService(client)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	// Creating with a duplicate email reports a field-scoped conflict.
	err = svc.Create(ctx, users.CreateInput{Name: "Dupe", Email: all[0].Email, Status: users.StatusActive})
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))
	assert.Equal(t, "This email is already in use", api.FieldErrors(err)["email"])

	require.NoError(t, svc.Create(ctx, users.CreateInput{Name: "Fresh", Email: "fresh@example.com", Status: users.StatusActive, Plan: "Basic"}))

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(all)+1)
}

func TestApprovalWorkflow(t *testing.T) {
	client := newTestClient(t)
	ctx := adminContext(t, client)
	svc := users.NewService(client)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	target := pending[0].ID

	// A reject without a reason is refused server-side too.
	err = client.Post(ctx, "/console/users/"+target+"/reject", map[string]string{"reason": ""}, nil)
	require.Error(t, err)
	assert.Equal(t, "A rejection reason is required", api.FieldErrors(err)["reason"])

	require.NoError(t, svc.Approve(ctx, target))

	remaining, err := svc.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, len(pending)-1)
}

func TestStaffPatchTogglesActive(t *testing.T) {
	client := newTestClient(t)
	ctx := adminContext(t, client)
	svc := staff.NewService(client)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	require.True(t, all[0].IsActive)

	require.NoError(t, svc.Update(ctx, all[0].ID, map[string]any{"isActive": false}))

	got, err := svc.Get(ctx, all[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestAdminRoutesRequireSuperAdmin(t *testing.T) {
	client := newTestClient(t)

	result, err := auth.NewService(client).Login(context.Background(), "staff@meridian.test", DefaultPassword, shared.UserTypeStaff)
	require.NoError(t, err)
	sess := &shared.Session{}
	sess.SetCredentials(result.AccessToken, result.User)
	ctx := shared.ContextWithSession(context.Background(), sess)

	var out []any
	err = client.Get(ctx, "/console/admins", &out)
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestAnalyticsDashboardShape(t *testing.T) {
	client := newTestClient(t)
	ctx := adminContext(t, client)

	var dash map[string]any
	require.NoError(t, client.Get(ctx, "/console/analytics/dashboard", &dash))
	assert.Contains(t, dash, "overview")
	assert.Contains(t, dash, "pendingPlans")
	assert.Contains(t, dash, "recentUsers")
}
