package users

import (
	"context"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/shared"
)

// Service exposes the remote user collection. The backend is the only store;
// every read goes to the wire.
type Service struct {
	api *api.Client
}

// NewService builds Service instance.
func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// List returns the full user collection.
func (s *Service) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.api.Get(ctx, "/console/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	var out User
	if err := s.api.Get(ctx, "/console/users/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a new user.
func (s *Service) Create(ctx context.Context, input CreateInput) error {
	return s.api.Post(ctx, "/console/users", input, nil)
}

// Update patches only the provided fields.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	return s.api.Patch(ctx, "/console/users/"+id, patch, nil)
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, "/console/users/"+id)
}

// Pending lists users awaiting approval.
func (s *Service) Pending(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.api.Get(ctx, "/console/users/pending/list", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Approve moves a pending user to approved. The transition endpoint is
// distinct from the generic PATCH so backend workflow validation applies.
func (s *Service) Approve(ctx context.Context, id string) error {
	return s.api.Post(ctx, "/console/users/"+id+"/approve", nil, nil)
}

// Reject moves a pending user to rejected. A reason is mandatory; the call
// never reaches the backend without one.
func (s *Service) Reject(ctx context.Context, id, reason string) error {
	if reason == "" {
		return shared.ErrReasonRequired
	}
	return s.api.Post(ctx, "/console/users/"+id+"/reject", map[string]string{"reason": reason}, nil)
}

// SendResetEmail asks the backend to mail a password reset link.
func (s *Service) SendResetEmail(ctx context.Context, email string) error {
	return s.api.Post(ctx, "/console/users/send-reset-email", map[string]string{"email": email}, nil)
}
