package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/console"
	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

// Handler manages the customer pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	gate      gate.Middleware
	validator *validator.Validate
	lastGood  console.Snapshot[User]
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, gm gate.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		gate:      gm,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermUsersView, shared.PermUsersEdit))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(shared.PermUsersEdit))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.update)
		r.Get("/{id}/delete", h.confirmDelete)
		r.Post("/{id}/delete", h.delete)
		r.Post("/reset-email", h.sendResetEmail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(shared.PermUsersApprove))
		r.Post("/{id}/approve", h.approve)
		r.Get("/{id}/reject", h.showRejectForm)
		r.Post("/{id}/reject", h.reject)
	})
}

type formErrors map[string]string

type listData struct {
	Users      []User
	Tab        string
	Query      string
	Status     string
	Counts     map[string]int
	FetchError string
	Stale      bool
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	data := listData{
		Tab:    r.URL.Query().Get("tab"),
		Query:  r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}
	if data.Tab == "" {
		data.Tab = ApprovalApproved
	}

	all, err := h.service.List(r.Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("list users failed", slog.Any("error", err))
		// Preserve the previous successful fetch so the table stays usable.
		all, data.Stale = h.lastGood.Get()
		data.FetchError = shared.UserSafeMessage(err)
	} else {
		h.lastGood.Put(all)
	}

	data.Counts = approvalCounts(all)
	data.Users = filter(all, data.Tab, data.Status, data.Query)
	h.render(w, r, "pages/users/list.html", data, http.StatusOK)
}

// filter is a pure projection over the fetched collection; it never mutates
// the source slice.
func filter(all []User, tab, status, q string) []User {
	out := make([]User, 0, len(all))
	for _, u := range all {
		if tab != "" && u.ApprovalStatus != tab {
			continue
		}
		if status != "" && u.Status != status {
			continue
		}
		if !console.MatchesQuery(q, u.Name, u.Email, u.Plan) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func approvalCounts(all []User) map[string]int {
	counts := map[string]int{}
	for _, u := range all {
		counts[u.ApprovalStatus]++
	}
	return counts
}

type userForm struct {
	Name   string `validate:"required"`
	Email  string `validate:"required,email"`
	Status string `validate:"required,oneof=active inactive suspended"`
	Plan   string
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/users/form.html", map[string]any{"Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := userForm{
		Name:   r.PostFormValue("name"),
		Email:  r.PostFormValue("email"),
		Status: r.PostFormValue("status"),
		Plan:   r.PostFormValue("plan"),
	}
	errs := h.validate(form)
	if len(errs) == 0 {
		err := h.service.Create(r.Context(), CreateInput{
			Name:   form.Name,
			Email:  form.Email,
			Status: form.Status,
			Plan:   form.Plan,
		})
		errs = h.mutationErrors(err)
	}
	if len(errs) > 0 {
		// The form stays open with entered values so the operator can
		// correct and retry.
		h.render(w, r, "pages/users/form.html", map[string]any{"Errors": errs, "Form": form}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "User created successfully")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.fetchUser(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/users/form.html", map[string]any{
		"Errors": formErrors{},
		"User":   user,
		"Form": userForm{
			Name:   user.Name,
			Email:  user.Email,
			Status: user.Status,
			Plan:   user.Plan,
		},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	user, ok := h.fetchUser(w, r)
	if !ok {
		return
	}
	form := userForm{
		Name:   r.PostFormValue("name"),
		Email:  r.PostFormValue("email"),
		Status: r.PostFormValue("status"),
		Plan:   r.PostFormValue("plan"),
	}
	errs := h.validate(form)
	if len(errs) == 0 {
		// PATCH semantics: only changed fields travel.
		patch := map[string]any{}
		if form.Name != user.Name {
			patch["name"] = form.Name
		}
		if form.Email != user.Email {
			patch["email"] = form.Email
		}
		if form.Status != user.Status {
			patch["status"] = form.Status
		}
		if form.Plan != user.Plan {
			patch["plan"] = form.Plan
		}
		errs = h.mutationErrors(h.service.Update(r.Context(), user.ID, patch))
	}
	if len(errs) > 0 {
		h.render(w, r, "pages/users/form.html", map[string]any{"Errors": errs, "User": user, "Form": form}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "User updated successfully")
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.fetchUser(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/users/confirm_delete.html", map[string]any{"User": user}, http.StatusOK)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete user failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/users", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "User deleted")
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Approve(r.Context(), id); err != nil {
		h.logger.Error("approve user failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/users?tab=pending", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/users?tab=pending", "success", "User approved successfully")
}

func (h *Handler) showRejectForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.fetchUser(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/users/reject.html", map[string]any{"User": user, "Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	reason := r.PostFormValue("reason")
	if reason == "" {
		// Enforced before any API call fires.
		user, ok := h.fetchUser(w, r)
		if !ok {
			return
		}
		h.render(w, r, "pages/users/reject.html", map[string]any{
			"User":   user,
			"Errors": formErrors{"reason": "A rejection reason is required"},
		}, http.StatusBadRequest)
		return
	}
	if err := h.service.Reject(r.Context(), id, reason); err != nil {
		h.logger.Error("reject user failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/users?tab=pending", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/users?tab=pending", "success", "User rejected")
}

func (h *Handler) sendResetEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	if err := h.service.SendResetEmail(r.Context(), email); err != nil {
		h.logger.Error("send reset email failed", slog.Any("error", err))
		h.redirectWithFlash(w, r, "/users", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "Password reset email sent")
}

// Helpers

func (h *Handler) validate(form userForm) formErrors {
	errs := formErrors{}
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Email":
				errs["email"] = "Please provide a valid email address"
			case "Name":
				errs["name"] = "Name is required"
			case "Status":
				errs["status"] = "Choose a valid status"
			}
		}
	}
	return errs
}

func (h *Handler) mutationErrors(err error) formErrors {
	if err == nil {
		return nil
	}
	errs := formErrors{}
	for k, v := range api.FieldErrors(err) {
		errs[k] = v
	}
	if api.IsConflict(err) && errs["email"] == "" {
		errs["email"] = "This email is already in use"
	}
	if len(errs) == 0 {
		errs["general"] = shared.UserSafeMessage(err)
	}
	return errs
}

func (h *Handler) fetchUser(w http.ResponseWriter, r *http.Request) (*User, bool) {
	id := chi.URLParam(r, "id")
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get user failed", slog.Any("error", err), slog.String("id", id))
		http.Error(w, "User not found", http.StatusNotFound)
		return nil, false
	}
	return user, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Users",
		CSRFField:   csrf.TemplateField(r),
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        sess.User(),
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
