package staff

import (
	"context"

	"github.com/meridianpay/console/internal/api"
)

// Service exposes the remote staff collection.
type Service struct {
	api *api.Client
}

// NewService builds Service instance.
func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// List returns all staff accounts.
func (s *Service) List(ctx context.Context) ([]Staff, error) {
	var out []Staff
	if err := s.api.Get(ctx, "/console/staff", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single staff account by id.
func (s *Service) Get(ctx context.Context, id string) (*Staff, error) {
	var out Staff
	if err := s.api.Get(ctx, "/console/staff/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a new staff account.
func (s *Service) Create(ctx context.Context, input CreateInput) error {
	return s.api.Post(ctx, "/console/staff", input, nil)
}

// Update patches only the provided fields.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	return s.api.Patch(ctx, "/console/staff/"+id, patch, nil)
}

// Delete removes a staff account.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, "/console/staff/"+id)
}
