package staff

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/console"
	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

// Handler manages the staff account pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	gate      gate.Middleware
	validator *validator.Validate
	lastGood  console.Snapshot[Staff]
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

// MountRoutes registers staff routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermStaffView, shared.PermStaffEdit))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(shared.PermStaffEdit))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.update)
		r.Get("/{id}/delete", h.confirmDelete)
		r.Post("/{id}/delete", h.delete)
	})
}

type formErrors map[string]string

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	all, err := h.service.List(r.Context())
	fetchError := ""
	stale := false
	if err != nil {
		if api.IsUnauthorized(err) {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("list staff failed", slog.Any("error", err))
		all, stale = h.lastGood.Get()
		fetchError = shared.UserSafeMessage(err)
	} else {
		h.lastGood.Put(all)
	}

	filtered := make([]Staff, 0, len(all))
	for _, s := range all {
		if console.MatchesQuery(query, s.Name, s.Email, s.Role) {
			filtered = append(filtered, s)
		}
	}
	h.render(w, r, "pages/staff/list.html", map[string]any{
		"Staff":      filtered,
		"Query":      query,
		"FetchError": fetchError,
		"Stale":      stale,
	}, http.StatusOK)
}

type staffForm struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Password    string
	Role        string `validate:"required,oneof=super_admin admin moderator customer_support accountant"`
	Permissions []string
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/staff/form.html", map[string]any{
		"Errors": formErrors{},
		"Scopes": scopeList(),
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := staffForm{
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Password:    r.PostFormValue("password"),
		Role:        r.PostFormValue("role"),
		Permissions: gate.Normalize(r.PostForm["permissions"]),
	}
	errs := h.validate(form)
	if form.Password == "" {
		errs["password"] = "Password is required"
	} else if len(form.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	}
	if len(errs) == 0 {
		err := h.service.Create(r.Context(), CreateInput{
			Email:       form.Email,
			Name:        form.Name,
			Password:    form.Password,
			Role:        form.Role,
			Permissions: form.Permissions,
		})
		errs = h.mutationErrors(err)
	}
	if len(errs) > 0 {
		form.Password = ""
		h.render(w, r, "pages/staff/form.html", map[string]any{
			"Errors": errs,
			"Form":   form,
			"Scopes": scopeList(),
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/staff", "success", "Staff member created successfully")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	member, ok := h.fetchStaff(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/staff/form.html", map[string]any{
		"Errors": formErrors{},
		"Member": member,
		"Scopes": scopeList(),
		"Form": staffForm{
			Name:        member.Name,
			Email:       member.Email,
			Role:        member.Role,
			Permissions: member.Permissions,
		},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	member, ok := h.fetchStaff(w, r)
	if !ok {
		return
	}
	form := staffForm{
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Role:        r.PostFormValue("role"),
		Permissions: gate.Normalize(r.PostForm["permissions"]),
	}
	errs := h.validate(form)
	if len(errs) == 0 {
		patch := map[string]any{}
		if form.Name != member.Name {
			patch["name"] = form.Name
		}
		if form.Email != member.Email {
			patch["email"] = form.Email
		}
		if form.Role != member.Role {
			patch["role"] = form.Role
		}
		if !equalSets(form.Permissions, member.Permissions) {
			patch["permissions"] = form.Permissions
		}
		if active := r.PostFormValue("is_active"); active != "" {
			isActive := active == "true"
			if isActive != member.IsActive {
				patch["isActive"] = isActive
			}
		}
		errs = h.mutationErrors(h.service.Update(r.Context(), member.ID, patch))
	}
	if len(errs) > 0 {
		h.render(w, r, "pages/staff/form.html", map[string]any{
			"Errors": errs,
			"Member": member,
			"Form":   form,
			"Scopes": scopeList(),
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/staff", "success", "Staff member updated successfully")
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	member, ok := h.fetchStaff(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/staff/confirm_delete.html", map[string]any{"Member": member}, http.StatusOK)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete staff failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/staff", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/staff", "success", "Staff member deleted")
}

// Helpers

func (h *Handler) validate(form staffForm) formErrors {
	errs := formErrors{}
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Email":
				errs["email"] = "Please provide a valid email address"
			case "Name":
				errs["name"] = "Name is required"
			case "Role":
				errs["role"] = "Choose a valid role"
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

func scopeList() []string {
	return shared.ConsoleScopes()
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func (h *Handler) fetchStaff(w http.ResponseWriter, r *http.Request) (*Staff, bool) {
	id := chi.URLParam(r, "id")
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get staff failed", slog.Any("error", err), slog.String("id", id))
		http.Error(w, "Staff member not found", http.StatusNotFound)
		return nil, false
	}
	return member, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Staff",
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
