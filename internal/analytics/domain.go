// Package analytics serves the aggregate reporting pages from the backend's
// analytics endpoints, with a Redis read-through cache in front.
package analytics

// Overview is the headline metric payload.
type Overview struct {
	TotalUsers        int            `json:"totalUsers"`
	TotalPlans        int            `json:"totalPlans"`
	TotalRevenue      float64        `json:"totalRevenue"`
	UsersByStatus     map[string]int `json:"usersByStatus"`
	UsersLast7Days    int            `json:"usersLast7Days"`
	UsersLast30Days   int            `json:"usersLast30Days"`
	PendingPlansCount int            `json:"pendingPlansCount"`
}

// RevenuePeriod identifies a month.
type RevenuePeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// RevenuePoint is one month of revenue.
type RevenuePoint struct {
	Period  RevenuePeriod `json:"period"`
	Revenue float64       `json:"revenue"`
	Count   int           `json:"count"`
}

// Revenue is the revenue report payload.
type Revenue struct {
	TotalRevenue float64        `json:"totalRevenue"`
	Monthly      []RevenuePoint `json:"monthlyRevenue"`
}

// StatusCount pairs a lifecycle status with its population.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// UserStats is the user analytics payload.
type UserStats struct {
	TotalUsers        int           `json:"totalUsers"`
	ByStatus          []StatusCount `json:"usersByStatus"`
	NewUsersThisMonth int           `json:"newUsersThisMonth"`
	GrowthRate        float64       `json:"userGrowthRate"`
}

// PlanStat summarises one plan's population and revenue.
type PlanStat struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Subscribers int     `json:"subscribers"`
	Revenue     float64 `json:"revenue"`
}

// ApprovalStats counts plans per approval state.
type ApprovalStats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// PlanStats is the plan analytics payload.
type PlanStats struct {
	Plans    []PlanStat    `json:"planStats"`
	Approval ApprovalStats `json:"approvalStats"`
}

// TopReferrer is one row of the referral leaderboard.
type TopReferrer struct {
	StaffID     string `json:"staffId"`
	StaffName   string `json:"staffName"`
	Referrals   int    `json:"referralsCount"`
	TotalPoints int    `json:"totalPoints"`
}

// ReferralStats is the referral analytics payload.
type ReferralStats struct {
	TotalReferrals      int           `json:"totalReferrals"`
	SuccessfulReferrals int           `json:"successfulReferrals"`
	TotalPointsAwarded  int           `json:"totalPointsAwarded"`
	TopReferrers        []TopReferrer `json:"topReferrers"`
}

// PendingPlanSummary is a pending plan row on the dashboard.
type PendingPlanSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	CreatedBy string  `json:"createdByName"`
	CreatedAt string  `json:"createdAt"`
}

// RecentUser is a recently joined customer on the dashboard.
type RecentUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Plan     string `json:"plan"`
	JoinDate string `json:"joinDate"`
}

// TopStaff is one row of the staff leaderboard.
type TopStaff struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalPoints int    `json:"totalPoints"`
}

// PlanDistribution is one slice of the plan population chart.
type PlanDistribution struct {
	Name    string  `json:"name"`
	Users   int     `json:"users"`
	Revenue float64 `json:"revenue"`
}

// Dashboard is the combined landing page payload.
type Dashboard struct {
	Overview         Overview             `json:"overview"`
	PendingPlans     []PendingPlanSummary `json:"pendingPlans"`
	RecentUsers      []RecentUser         `json:"recentUsers"`
	TopStaff         []TopStaff           `json:"topStaff"`
	PlanDistribution []PlanDistribution   `json:"planDistribution"`
}
