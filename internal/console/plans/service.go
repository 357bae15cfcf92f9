package plans

import (
	"context"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/shared"
)

// Service exposes the remote plan collection.
type Service struct {
	api *api.Client
}

// NewService builds Service instance.
func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// List returns the full plan collection.
func (s *Service) List(ctx context.Context) ([]Plan, error) {
	var out []Plan
	if err := s.api.Get(ctx, "/console/plans", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single plan by id.
func (s *Service) Get(ctx context.Context, id string) (*Plan, error) {
	var out Plan
	if err := s.api.Get(ctx, "/console/plans/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a new plan.
func (s *Service) Create(ctx context.Context, input CreateInput) error {
	return s.api.Post(ctx, "/console/plans", input, nil)
}

// Update patches only the provided fields.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	return s.api.Patch(ctx, "/console/plans/"+id, patch, nil)
}

// Delete removes a plan.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, "/console/plans/"+id)
}

// Pending lists staff-authored plans awaiting approval.
func (s *Service) Pending(ctx context.Context) ([]Plan, error) {
	var out []Plan
	if err := s.api.Get(ctx, "/console/plans/pending/list", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Approve moves a pending plan to approved.
func (s *Service) Approve(ctx context.Context, id string) error {
	return s.api.Post(ctx, "/console/plans/"+id+"/approve", nil, nil)
}

// Reject moves a pending plan to rejected. A reason is mandatory.
func (s *Service) Reject(ctx context.Context, id, reason string) error {
	if reason == "" {
		return shared.ErrReasonRequired
	}
	return s.api.Post(ctx, "/console/plans/"+id+"/reject", map[string]string{"reason": reason}, nil)
}
