// Package staff bridges the backend's staff account collection to the
// console.
package staff

// Staff is a staff account as served by the backend. Staff accounts carry an
// explicit permission set; their role is informational unless it is the top
// tier.
type Staff struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// CreateInput carries the fields accepted when creating a staff account.
// Password is only ever sent on create.
type CreateInput struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}
