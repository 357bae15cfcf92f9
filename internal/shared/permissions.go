package shared

// Console permissions.
const (
	PermUsersView    = "users.view"
	PermUsersEdit    = "users.edit"
	PermUsersApprove = "users.approve"

	PermPlansView    = "plans.view"
	PermPlansEdit    = "plans.edit"
	PermPlansApprove = "plans.approve"

	PermStaffView = "staff.view"
	PermStaffEdit = "staff.edit"

	PermAdminsView = "admins.view"
	PermAdminsEdit = "admins.edit"

	PermAnalyticsView = "analytics.view"
)

// ConsoleScopes lists every assignable console permission.
func ConsoleScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermUsersApprove,
		PermPlansView,
		PermPlansEdit,
		PermPlansApprove,
		PermStaffView,
		PermStaffEdit,
		PermAdminsView,
		PermAdminsEdit,
		PermAnalyticsView,
	}
}
