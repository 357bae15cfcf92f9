package analytics

import (
	"context"
	"log/slog"

	"github.com/meridianpay/console/internal/api"
)

// Service fetches analytics payloads from the backend through the cache.
type Service struct {
	api    *api.Client
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(client *api.Client, cache *Cache, logger *slog.Logger) *Service {
	return &Service{api: client, cache: cache, logger: logger}
}

// Overview returns the headline metrics.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	if err := s.cached(ctx, "overview", "/console/analytics/overview", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Revenue returns the revenue report.
func (s *Service) Revenue(ctx context.Context) (*Revenue, error) {
	var out Revenue
	if err := s.cached(ctx, "revenue", "/console/analytics/revenue", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users returns the user analytics.
func (s *Service) Users(ctx context.Context) (*UserStats, error) {
	var out UserStats
	if err := s.cached(ctx, "users", "/console/analytics/users", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Plans returns the plan analytics.
func (s *Service) Plans(ctx context.Context) (*PlanStats, error) {
	var out PlanStats
	if err := s.cached(ctx, "plans", "/console/analytics/plans", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Referrals returns the referral analytics.
func (s *Service) Referrals(ctx context.Context) (*ReferralStats, error) {
	var out ReferralStats
	if err := s.cached(ctx, "referrals", "/console/analytics/referrals", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dashboard returns the combined landing page payload.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := s.cached(ctx, "dashboard", "/console/analytics/dashboard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Warm prefetches every analytics payload into the cache. Used by the
// background worker so the first page after login renders from Redis.
func (s *Service) Warm(ctx context.Context) error {
	fetches := []func(context.Context) error{
		func(ctx context.Context) error { _, err := s.Overview(ctx); return err },
		func(ctx context.Context) error { _, err := s.Revenue(ctx); return err },
		func(ctx context.Context) error { _, err := s.Users(ctx); return err },
		func(ctx context.Context) error { _, err := s.Plans(ctx); return err },
		func(ctx context.Context) error { _, err := s.Referrals(ctx); return err },
		func(ctx context.Context) error { _, err := s.Dashboard(ctx); return err },
	}
	for _, fetch := range fetches {
		if err := fetch(ctx); err != nil {
			return err
		}
	}
	return nil
}

// cached is the read-through path: serve from Redis when present, else hit
// the backend and store the payload.
func (s *Service) cached(ctx context.Context, name, path string, out any) error {
	key, err := s.cache.BuildKey(ctx, "analytics", name)
	if err != nil && s.logger != nil {
		s.logger.Warn("analytics cache key", slog.Any("error", err))
	}
	if key != "" {
		if ok, err := s.cache.GetJSON(ctx, key, out); err == nil && ok {
			return nil
		}
	}
	if err := s.api.Get(ctx, path, out); err != nil {
		return err
	}
	if key != "" {
		if err := s.cache.SetJSON(ctx, key, out); err != nil && s.logger != nil {
			s.logger.Warn("analytics cache store", slog.Any("error", err))
		}
	}
	return nil
}
