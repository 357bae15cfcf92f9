// Package plans bridges the backend's subscription plan collection to the
// console.
package plans

// Lifecycle statuses for a plan.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Approval workflow states for staff-authored plans.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Billing cycles.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// Creator identifies who authored a plan.
type Creator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Plan is a subscription plan as served by the backend.
type Plan struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Billing        string   `json:"billing"`
	Features       []string `json:"features"`
	Description    string   `json:"description"`
	Subscribers    int      `json:"subscribers"`
	Revenue        float64  `json:"revenue"`
	Status         string   `json:"status"`
	ApprovalStatus string   `json:"approvalStatus"`
	CreatedBy      *Creator `json:"createdBy,omitempty"`
	CreatedAt      string   `json:"createdAt,omitempty"`
}

// CreateInput carries the fields accepted when creating a plan.
type CreateInput struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Billing     string   `json:"billing"`
	Features    []string `json:"features"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
}
