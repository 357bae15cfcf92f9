// Package users bridges the backend's customer collection to the console.
package users

// Lifecycle statuses for a customer account.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Approval workflow states, independent of the lifecycle status.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// User is a platform customer as served by the backend.
type User struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Status         string  `json:"status"`
	ApprovalStatus string  `json:"approvalStatus"`
	Plan           string  `json:"plan"`
	JoinDate       string  `json:"joinDate"`
	LastLogin      string  `json:"lastLogin"`
	Revenue        float64 `json:"revenue"`
}

// CreateInput carries the fields accepted when creating a user.
type CreateInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
	Plan   string `json:"plan"`
}
