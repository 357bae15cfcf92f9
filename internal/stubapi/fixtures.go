package stubapi

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/meridianpay/console/internal/console/admins"
	"github.com/meridianpay/console/internal/console/plans"
	"github.com/meridianpay/console/internal/console/staff"
	"github.com/meridianpay/console/internal/console/users"
	"github.com/meridianpay/console/internal/shared"
)

// DefaultPassword is the password every seeded account accepts.
const DefaultPassword = "password123"

type account struct {
	passwordHash []byte
	identity     shared.Identity
}

func seedAccounts() []account {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return []account{
		{
			passwordHash: hash,
			identity: shared.Identity{
				ID:       "adm-1",
				Email:    "admin@meridian.test",
				Name:     "Root Admin",
				Role:     shared.RoleSuperAdmin,
				UserType: shared.UserTypeAdmin,
			},
		},
		{
			passwordHash: hash,
			identity: shared.Identity{
				ID:       "stf-1",
				Email:    "staff@meridian.test",
				Name:     "Support Staff",
				Role:     shared.RoleCustomerSupport,
				UserType: shared.UserTypeStaff,
				Permissions: []string{
					shared.PermUsersView,
					shared.PermPlansView,
					shared.PermAnalyticsView,
				},
			},
		},
	}
}

func seedUsers() []users.User {
	return []users.User{
		{ID: "u-1", Name: "John Smith", Email: "john@example.com", Status: users.StatusActive, ApprovalStatus: users.ApprovalApproved, Plan: "Pro", JoinDate: "2024-01-15", LastLogin: "2024-09-16", Revenue: 299},
		{ID: "u-2", Name: "Sarah Johnson", Email: "sarah@example.com", Status: users.StatusActive, ApprovalStatus: users.ApprovalApproved, Plan: "Enterprise", JoinDate: "2024-02-20", LastLogin: "2024-09-15", Revenue: 999},
		{ID: "u-3", Name: "Mike Chen", Email: "mike@example.com", Status: users.StatusInactive, ApprovalStatus: users.ApprovalApproved, Plan: "Basic", JoinDate: "2024-03-10", LastLogin: "2024-09-10", Revenue: 99},
		{ID: "u-4", Name: "Emily Davis", Email: "emily@example.com", Status: users.StatusActive, ApprovalStatus: users.ApprovalPending, Plan: "Pro", JoinDate: "2024-01-05", LastLogin: "2024-09-16", Revenue: 299},
		{ID: "u-5", Name: "Alex Rodriguez", Email: "alex@example.com", Status: users.StatusSuspended, ApprovalStatus: users.ApprovalApproved, Plan: "Basic", JoinDate: "2024-04-12", LastLogin: "2024-09-08", Revenue: 0},
	}
}

func seedPlans() []plans.Plan {
	return []plans.Plan{
		{
			ID: "p-1", Name: "Basic", Price: 99, Billing: plans.BillingMonthly,
			Features:    []string{"Up to 10 transactions", "Basic reporting", "Email support"},
			Subscribers: 1250, Revenue: 123750, Status: plans.StatusActive,
			ApprovalStatus: plans.ApprovalApproved,
			Description:    "Perfect for individuals and small businesses.",
		},
		{
			ID: "p-2", Name: "Pro", Price: 299, Billing: plans.BillingMonthly,
			Features:    []string{"Unlimited transactions", "Advanced reporting", "Priority support", "API access"},
			Subscribers: 850, Revenue: 254150, Status: plans.StatusActive,
			ApprovalStatus: plans.ApprovalApproved,
			Description:    "Ideal for growing businesses.",
		},
		{
			ID: "p-3", Name: "Starter Annual", Price: 950, Billing: plans.BillingYearly,
			Features:    []string{"Up to 10 transactions", "Basic reporting"},
			Subscribers: 0, Revenue: 0, Status: plans.StatusInactive,
			ApprovalStatus: plans.ApprovalPending,
			CreatedBy:      &plans.Creator{ID: "stf-1", Name: "Support Staff", Email: "staff@meridian.test"},
			Description:    "Discounted annual starter tier.",
		},
	}
}

func seedStaff() []staff.Staff {
	return []staff.Staff{
		{
			ID: "stf-1", Email: "staff@meridian.test", Name: "Support Staff",
			Role:        shared.RoleCustomerSupport,
			Permissions: []string{shared.PermUsersView, shared.PermPlansView, shared.PermAnalyticsView},
			IsActive:    true,
		},
		{
			ID: "stf-2", Email: "books@meridian.test", Name: "Ledger Keeper",
			Role:        shared.RoleAccountant,
			Permissions: []string{shared.PermAnalyticsView, shared.PermPlansView},
			IsActive:    true,
		},
	}
}

func seedAdmins() []admins.Admin {
	return []admins.Admin{
		{ID: "adm-1", Email: "admin@meridian.test", Name: "Root Admin", Role: shared.RoleSuperAdmin},
		{ID: "adm-2", Email: "ops@meridian.test", Name: "Ops Admin", Role: shared.RoleAdmin},
	}
}
