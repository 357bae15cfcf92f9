package admins

import (
	"context"

	"github.com/meridianpay/console/internal/api"
)

// Service exposes the remote admin collection.
type Service struct {
	api *api.Client
}

// NewService builds Service instance.
func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// List returns all admin accounts.
func (s *Service) List(ctx context.Context) ([]Admin, error) {
	var out []Admin
	if err := s.api.Get(ctx, "/console/admins", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single admin account by id.
func (s *Service) Get(ctx context.Context, id string) (*Admin, error) {
	var out Admin
	if err := s.api.Get(ctx, "/console/admins/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a new admin account.
func (s *Service) Create(ctx context.Context, input CreateInput) error {
	return s.api.Post(ctx, "/console/admins", input, nil)
}

// Update patches only the provided fields.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	return s.api.Patch(ctx, "/console/admins/"+id, patch, nil)
}

// Delete removes an admin account.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, "/console/admins/"+id)
}
