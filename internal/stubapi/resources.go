package stubapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meridianpay/console/internal/console/admins"
	"github.com/meridianpay/console/internal/console/plans"
	"github.com/meridianpay/console/internal/console/staff"
	"github.com/meridianpay/console/internal/console/users"
	"github.com/meridianpay/console/internal/platform/httpx"
	"github.com/meridianpay/console/internal/shared"
)

type rejectRequest struct {
	Reason string `json:"reason"`
}

func decodeReject(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return "", false
	}
	if strings.TrimSpace(req.Reason) == "" {
		httpx.FieldError(w, http.StatusBadRequest, "Validation failed", "reason", "A rejection reason is required")
		return "", false
	}
	return req.Reason, true
}

func (s *Server) mountUserRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.listUsers)
		r.Post("/", s.createUser)
		r.Get("/pending/list", s.pendingUsers)
		r.Post("/send-reset-email", s.sendResetEmail)
		r.Get("/{id}", s.getUser)
		r.Patch("/{id}", s.updateUser)
		r.Delete("/{id}", s.deleteUser)
		r.Post("/{id}/approve", s.approveUser)
		r.Post("/{id}/reject", s.rejectUser)
	})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]users.User(nil), s.users...)
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) pendingUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := []users.User{}
	for _, u := range s.users {
		if u.ApprovalStatus == users.ApprovalPending {
			out = append(out, u)
		}
	}
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.userIndex(chi.URLParam(r, "id")); i >= 0 {
		httpx.JSON(w, http.StatusOK, s.users[i])
		return
	}
	httpx.Error(w, http.StatusNotFound, "User not found")
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var input users.CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, input.Email) {
			httpx.FieldError(w, http.StatusConflict, "Email already registered", "email", "This email is already in use")
			return
		}
	}
	u := users.User{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Email:          input.Email,
		Status:         input.Status,
		ApprovalStatus: users.ApprovalApproved,
		Plan:           input.Plan,
		JoinDate:       time.Now().Format("2006-01-02"),
	}
	s.users = append(s.users, u)
	httpx.JSON(w, http.StatusCreated, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "User not found")
		return
	}
	u := &s.users[i]
	if v, ok := patch["email"].(string); ok {
		for j, other := range s.users {
			if j != i && strings.EqualFold(other.Email, v) {
				httpx.FieldError(w, http.StatusConflict, "Email already registered", "email", "This email is already in use")
				return
			}
		}
		u.Email = v
	}
	if v, ok := patch["name"].(string); ok {
		u.Name = v
	}
	if v, ok := patch["status"].(string); ok {
		u.Status = v
	}
	if v, ok := patch["plan"].(string); ok {
		u.Plan = v
	}
	httpx.JSON(w, http.StatusOK, *u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "User not found")
		return
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (s *Server) approveUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "User not found")
		return
	}
	s.users[i].ApprovalStatus = users.ApprovalApproved
	httpx.JSON(w, http.StatusOK, s.users[i])
}

func (s *Server) rejectUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := decodeReject(w, r); !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "User not found")
		return
	}
	s.users[i].ApprovalStatus = users.ApprovalRejected
	httpx.JSON(w, http.StatusOK, s.users[i])
}

func (s *Server) sendResetEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.logger.Info("password reset email queued", "email", req.Email)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Reset email sent"})
}

func (s *Server) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) mountPlanRoutes(r chi.Router) {
	r.Route("/plans", func(r chi.Router) {
		r.Get("/", s.listPlans)
		r.Post("/", s.createPlan)
		r.Get("/pending/list", s.pendingPlans)
		r.Get("/{id}", s.getPlan)
		r.Patch("/{id}", s.updatePlan)
		r.Delete("/{id}", s.deletePlan)
		r.Post("/{id}/approve", s.approvePlan)
		r.Post("/{id}/reject", s.rejectPlan)
	})
}

func (s *Server) listPlans(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]plans.Plan(nil), s.plans...)
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) pendingPlans(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := []plans.Plan{}
	for _, p := range s.plans {
		if p.ApprovalStatus == plans.ApprovalPending {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.planIndex(chi.URLParam(r, "id")); i >= 0 {
		httpx.JSON(w, http.StatusOK, s.plans[i])
		return
	}
	httpx.Error(w, http.StatusNotFound, "Plan not found")
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	var input plans.CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	id := identityFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if strings.EqualFold(p.Name, input.Name) {
			httpx.FieldError(w, http.StatusConflict, "Plan name already taken", "name", "A plan with this name already exists")
			return
		}
	}
	// Plans authored by staff enter the approval queue; admin plans go live.
	approval := plans.ApprovalApproved
	var creator *plans.Creator
	if id.UserType != shared.UserTypeAdmin {
		approval = plans.ApprovalPending
		creator = &plans.Creator{ID: id.ID, Name: id.Name, Email: id.Email}
	}
	p := plans.Plan{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Price:          input.Price,
		Billing:        input.Billing,
		Features:       input.Features,
		Description:    input.Description,
		Status:         input.Status,
		ApprovalStatus: approval,
		CreatedBy:      creator,
		CreatedAt:      time.Now().Format(time.RFC3339),
	}
	s.plans = append(s.plans, p)
	httpx.JSON(w, http.StatusCreated, p)
}

func (s *Server) updatePlan(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.planIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Plan not found")
		return
	}
	p := &s.plans[i]
	if v, ok := patch["name"].(string); ok {
		for j, other := range s.plans {
			if j != i && strings.EqualFold(other.Name, v) {
				httpx.FieldError(w, http.StatusConflict, "Plan name already taken", "name", "A plan with this name already exists")
				return
			}
		}
		p.Name = v
	}
	if v, ok := patch["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := patch["billing"].(string); ok {
		p.Billing = v
	}
	if v, ok := patch["description"].(string); ok {
		p.Description = v
	}
	if v, ok := patch["status"].(string); ok {
		p.Status = v
	}
	if v, ok := patch["features"].([]any); ok {
		features := make([]string, 0, len(v))
		for _, f := range v {
			if str, ok := f.(string); ok {
				features = append(features, str)
			}
		}
		p.Features = features
	}
	httpx.JSON(w, http.StatusOK, *p)
}

func (s *Server) deletePlan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.planIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Plan not found")
		return
	}
	s.plans = append(s.plans[:i], s.plans[i+1:]...)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Plan deleted"})
}

func (s *Server) approvePlan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.planIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Plan not found")
		return
	}
	s.plans[i].ApprovalStatus = plans.ApprovalApproved
	httpx.JSON(w, http.StatusOK, s.plans[i])
}

func (s *Server) rejectPlan(w http.ResponseWriter, r *http.Request) {
	if _, ok := decodeReject(w, r); !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.planIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Plan not found")
		return
	}
	s.plans[i].ApprovalStatus = plans.ApprovalRejected
	httpx.JSON(w, http.StatusOK, s.plans[i])
}

func (s *Server) planIndex(id string) int {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) mountStaffRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.Get("/", s.listStaff)
		r.Post("/", s.createStaff)
		r.Get("/{id}", s.getStaff)
		r.Patch("/{id}", s.updateStaff)
		r.Delete("/{id}", s.deleteStaff)
	})
}

func (s *Server) listStaff(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]staff.Staff(nil), s.staff...)
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) getStaff(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.staffIndex(chi.URLParam(r, "id")); i >= 0 {
		httpx.JSON(w, http.StatusOK, s.staff[i])
		return
	}
	httpx.Error(w, http.StatusNotFound, "Staff member not found")
}

func (s *Server) createStaff(w http.ResponseWriter, r *http.Request) {
	var input staff.CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.staff {
		if strings.EqualFold(m.Email, input.Email) {
			httpx.FieldError(w, http.StatusConflict, "Email already registered", "email", "This email is already in use")
			return
		}
	}
	m := staff.Staff{
		ID:          uuid.NewString(),
		Email:       input.Email,
		Name:        input.Name,
		Role:        input.Role,
		Permissions: input.Permissions,
		IsActive:    true,
		CreatedAt:   time.Now().Format(time.RFC3339),
	}
	s.staff = append(s.staff, m)
	httpx.JSON(w, http.StatusCreated, m)
}

func (s *Server) updateStaff(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.staffIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Staff member not found")
		return
	}
	m := &s.staff[i]
	if v, ok := patch["email"].(string); ok {
		for j, other := range s.staff {
			if j != i && strings.EqualFold(other.Email, v) {
				httpx.FieldError(w, http.StatusConflict, "Email already registered", "email", "This email is already in use")
				return
			}
		}
		m.Email = v
	}
	if v, ok := patch["name"].(string); ok {
		m.Name = v
	}
	if v, ok := patch["role"].(string); ok {
		m.Role = v
	}
	if v, ok := patch["isActive"].(bool); ok {
		m.IsActive = v
	}
	if v, ok := patch["permissions"].([]any); ok {
		perms := make([]string, 0, len(v))
		for _, p := range v {
			if str, ok := p.(string); ok {
				perms = append(perms, str)
			}
		}
		m.Permissions = perms
	}
	m.UpdatedAt = time.Now().Format(time.RFC3339)
	httpx.JSON(w, http.StatusOK, *m)
}

func (s *Server) deleteStaff(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.staffIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Staff member not found")
		return
	}
	s.staff = append(s.staff[:i], s.staff[i+1:]...)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Staff member deleted"})
}

func (s *Server) staffIndex(id string) int {
	for i := range s.staff {
		if s.staff[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) mountAdminRoutes(r chi.Router) {
	r.Route("/admins", func(r chi.Router) {
		r.Use(s.requireSuperAdmin)
		r.Get("/", s.listAdmins)
		r.Post("/", s.createAdmin)
		r.Get("/{id}", s.getAdmin)
		r.Patch("/{id}", s.updateAdmin)
		r.Delete("/{id}", s.deleteAdmin)
	})
}

func (s *Server) requireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFromContext(r.Context())
		if !id.IsSuperAdmin() {
			httpx.Error(w, http.StatusForbidden, "Super admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listAdmins(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]admins.Admin(nil), s.admins...)
	s.mu.Unlock()
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) getAdmin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.adminIndex(chi.URLParam(r, "id")); i >= 0 {
		httpx.JSON(w, http.StatusOK, s.admins[i])
		return
	}
	httpx.Error(w, http.StatusNotFound, "Admin not found")
}

func (s *Server) createAdmin(w http.ResponseWriter, r *http.Request) {
	var input admins.CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, input.Email) {
			httpx.FieldError(w, http.StatusConflict, "Email already registered", "email", "This email is already in use")
			return
		}
	}
	a := admins.Admin{
		ID:        uuid.NewString(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	s.admins = append(s.admins, a)
	httpx.JSON(w, http.StatusCreated, a)
}

func (s *Server) updateAdmin(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adminIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Admin not found")
		return
	}
	a := &s.admins[i]
	if v, ok := patch["email"].(string); ok {
		for j, other := range s.admins {
			if j != i && strings.EqualFold(other.Email, v) {
				httpx.FieldError(w, http.StatusConflict, "Email already registered", "email", "This email is already in use")
				return
			}
		}
		a.Email = v
	}
	if v, ok := patch["name"].(string); ok {
		a.Name = v
	}
	if v, ok := patch["role"].(string); ok {
		a.Role = v
	}
	a.UpdatedAt = time.Now().Format(time.RFC3339)
	httpx.JSON(w, http.StatusOK, *a)
}

func (s *Server) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adminIndex(chi.URLParam(r, "id"))
	if i < 0 {
		httpx.Error(w, http.StatusNotFound, "Admin not found")
		return
	}
	s.admins = append(s.admins[:i], s.admins[i+1:]...)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Admin deleted"})
}

func (s *Server) adminIndex(id string) int {
	for i := range s.admins {
		if s.admins[i].ID == id {
			return i
		}
	}
	return -1
}
