// Package auth mediates login, logout and profile flows against the
// backend's console auth endpoints.
package auth

import (
	"context"
	"fmt"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/shared"
)

// Service wraps the backend auth endpoints.
type Service struct {
	api *api.Client
}

// NewService constructs a new Service.
func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// LoginResult is the payload the backend returns on a successful login.
type LoginResult struct {
	AccessToken string          `json:"access_token"`
	User        shared.Identity `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// Login exchanges credentials for a bearer token and profile. Any failure
// propagates untouched so the form layer decides how to present it; prior
// session state is never modified here.
func (s *Service) Login(ctx context.Context, email, password, userType string) (*LoginResult, error) {
	var res LoginResult
	err := s.api.Post(ctx, "/console/auth/login", loginRequest{
		Email:    email,
		Password: password,
		UserType: userType,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.User.ID == "" {
		return nil, fmt.Errorf("auth: login response: %w", shared.ErrMalformedResponse)
	}
	return &res, nil
}

// CurrentUser refreshes the profile from the backend.
func (s *Service) CurrentUser(ctx context.Context) (*shared.Identity, error) {
	var user shared.Identity
	if err := s.api.Get(ctx, "/console/auth/me", &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("auth: me response: %w", shared.ErrMalformedResponse)
	}
	return &user, nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword updates the operator's password.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	return s.api.Post(ctx, "/console/auth/change-password", changePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil)
}
