package stubapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridianpay/console/internal/analytics"
	"github.com/meridianpay/console/internal/console/plans"
	"github.com/meridianpay/console/internal/console/users"
	"github.com/meridianpay/console/internal/platform/httpx"
)

func (s *Server) mountAnalyticsRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/overview", s.analyticsOverview)
		r.Get("/revenue", s.analyticsRevenue)
		r.Get("/users", s.analyticsUsers)
		r.Get("/plans", s.analyticsPlans)
		r.Get("/referrals", s.analyticsReferrals)
		r.Get("/dashboard", s.analyticsDashboard)
	})
}

func (s *Server) analyticsOverview(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.overview()
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) overview() analytics.Overview {
	byStatus := map[string]int{}
	var revenue float64
	for _, u := range s.users {
		byStatus[u.Status]++
		revenue += u.Revenue
	}
	pending := 0
	for _, p := range s.plans {
		if p.ApprovalStatus == plans.ApprovalPending {
			pending++
		}
	}
	return analytics.Overview{
		TotalUsers:        len(s.users),
		TotalPlans:        len(s.plans),
		TotalRevenue:      revenue,
		UsersByStatus:     byStatus,
		UsersLast7Days:    countJoinedSince(s.users, 7*24*time.Hour),
		UsersLast30Days:   countJoinedSince(s.users, 30*24*time.Hour),
		PendingPlansCount: pending,
	}
}

func countJoinedSince(list []users.User, window time.Duration) int {
	cutoff := time.Now().Add(-window)
	n := 0
	for _, u := range list {
		joined, err := time.Parse("2006-01-02", u.JoinDate)
		if err == nil && joined.After(cutoff) {
			n++
		}
	}
	return n
}

func (s *Server) analyticsRevenue(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	var total float64
	for _, u := range s.users {
		total += u.Revenue
	}
	s.mu.Unlock()

	// Spread the total over the trailing six months for charting.
	now := time.Now()
	monthly := make([]analytics.RevenuePoint, 0, 6)
	for i := 5; i >= 0; i-- {
		m := now.AddDate(0, -i, 0)
		monthly = append(monthly, analytics.RevenuePoint{
			Period:  analytics.RevenuePeriod{Year: m.Year(), Month: int(m.Month())},
			Revenue: total / 6,
			Count:   1,
		})
	}
	httpx.JSON(w, http.StatusOK, analytics.Revenue{TotalRevenue: total, Monthly: monthly})
}

func (s *Server) analyticsUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	byStatus := map[string]int{}
	for _, u := range s.users {
		byStatus[u.Status]++
	}
	total := len(s.users)
	newThisMonth := countJoinedSince(s.users, 30*24*time.Hour)
	s.mu.Unlock()

	counts := make([]analytics.StatusCount, 0, len(byStatus))
	for status, n := range byStatus {
		counts = append(counts, analytics.StatusCount{Status: status, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })

	httpx.JSON(w, http.StatusOK, analytics.UserStats{
		TotalUsers:        total,
		ByStatus:          counts,
		NewUsersThisMonth: newThisMonth,
		GrowthRate:        4.2,
	})
}

func (s *Server) analyticsPlans(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	stats := make([]analytics.PlanStat, 0, len(s.plans))
	var approval analytics.ApprovalStats
	for _, p := range s.plans {
		stats = append(stats, analytics.PlanStat{ID: p.ID, Name: p.Name, Subscribers: p.Subscribers, Revenue: p.Revenue})
		switch p.ApprovalStatus {
		case plans.ApprovalPending:
			approval.Pending++
		case plans.ApprovalApproved:
			approval.Approved++
		case plans.ApprovalRejected:
			approval.Rejected++
		}
	}
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, analytics.PlanStats{Plans: stats, Approval: approval})
}

func (s *Server) analyticsReferrals(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	top := make([]analytics.TopReferrer, 0, len(s.staff))
	points := 0
	for i, m := range s.staff {
		p := (len(s.staff) - i) * 120
		points += p
		top = append(top, analytics.TopReferrer{
			StaffID:     m.ID,
			StaffName:   m.Name,
			Referrals:   (len(s.staff) - i) * 3,
			TotalPoints: p,
		})
	}
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, analytics.ReferralStats{
		TotalReferrals:      len(top) * 3,
		SuccessfulReferrals: len(top) * 2,
		TotalPointsAwarded:  points,
		TopReferrers:        top,
	})
}

func (s *Server) analyticsDashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pendingPlans := []analytics.PendingPlanSummary{}
	for _, p := range s.plans {
		if p.ApprovalStatus != plans.ApprovalPending {
			continue
		}
		summary := analytics.PendingPlanSummary{ID: p.ID, Name: p.Name, Price: p.Price, CreatedAt: p.CreatedAt}
		if p.CreatedBy != nil {
			summary.CreatedBy = p.CreatedBy.Name
		}
		pendingPlans = append(pendingPlans, summary)
	}

	recent := make([]users.User, len(s.users))
	copy(recent, s.users)
	sort.Slice(recent, func(i, j int) bool { return recent[i].JoinDate > recent[j].JoinDate })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	recentUsers := make([]analytics.RecentUser, 0, len(recent))
	for _, u := range recent {
		recentUsers = append(recentUsers, analytics.RecentUser{
			ID: u.ID, Name: u.Name, Email: u.Email, Status: u.Status, Plan: u.Plan, JoinDate: u.JoinDate,
		})
	}

	topStaff := make([]analytics.TopStaff, 0, len(s.staff))
	for i, m := range s.staff {
		topStaff = append(topStaff, analytics.TopStaff{
			Rank: i + 1, Name: m.Name, Email: m.Email, TotalPoints: (len(s.staff) - i) * 120,
		})
	}

	dist := make([]analytics.PlanDistribution, 0, len(s.plans))
	for _, p := range s.plans {
		dist = append(dist, analytics.PlanDistribution{Name: p.Name, Users: p.Subscribers, Revenue: p.Revenue})
	}

	httpx.JSON(w, http.StatusOK, analytics.Dashboard{
		Overview:         s.overview(),
		PendingPlans:     pendingPlans,
		RecentUsers:      recentUsers,
		TopStaff:         topStaff,
		PlanDistribution: dist,
	})
}
