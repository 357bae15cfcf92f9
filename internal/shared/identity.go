package shared

// Roles assignable to console accounts.
const (
	RoleSuperAdmin      = "super_admin"
	RoleAdmin           = "admin"
	RoleModerator       = "moderator"
	RoleCustomerSupport = "customer_support"
	RoleAccountant      = "accountant"
)

// Account types issued by the authentication backend.
const (
	UserTypeAdmin = "admin"
	UserTypeStaff = "staff"
)

// Identity is the authenticated user profile returned by the backend on
// login and persisted alongside the bearer token.
type Identity struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	UserType    string   `json:"userType"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the identity holds the given permission.
// Super admins pass every check regardless of their permission set.
func (u *Identity) HasPermission(key string) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == key {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the identity is an admin-type account holding
// the top privilege role. A plain "admin" role does not qualify.
func (u *Identity) IsSuperAdmin() bool {
	return u != nil && u.UserType == UserTypeAdmin && u.Role == RoleSuperAdmin
}
