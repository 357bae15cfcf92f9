// Package admins bridges the backend's admin account collection to the
// console. Admin accounts are always super-admin territory: only the top
// privilege tier may see or manage them.
package admins

// Admin is an admin account as served by the backend.
type Admin struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// CreateInput carries the fields accepted when creating an admin account.
type CreateInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
