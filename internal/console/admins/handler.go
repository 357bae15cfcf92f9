package admins

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

// Handler manages the admin account pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	gate      gate.Middleware
	validator *validator.Validate
	lastGood  console.Snapshot[Admin]
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

// MountRoutes registers admin account routes. The whole surface is
// restricted to super admins.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireSuper())
		r.Get("/", h.list)
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
		h.logger.Error("list admins failed", slog.Any("error", err))
		all, stale = h.lastGood.Get()
		fetchError = shared.UserSafeMessage(err)
	} else {
		h.lastGood.Put(all)
	}

	filtered := make([]Admin, 0, len(all))
	for _, a := range all {
		if console.MatchesQuery(query, a.Name, a.Email, a.Role) {
			filtered = append(filtered, a)
		}
	}
	h.render(w, r, "pages/admins/list.html", map[string]any{
		"Admins":     filtered,
		"Query":      query,
		"FetchError": fetchError,
		"Stale":      stale,
	}, http.StatusOK)
}

type adminForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string
	Role     string `validate:"required,oneof=super_admin admin moderator"`
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/admins/form.html", map[string]any{"Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := adminForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
	errs := h.validate(form)
	if form.Password == "" {
		errs["password"] = "Password is required"
	} else if len(form.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	}
	if len(errs) == 0 {
		err := h.service.Create(r.Context(), CreateInput{
			Email:    form.Email,
			Name:     form.Name,
			Password: form.Password,
			Role:     form.Role,
		})
		errs = h.mutationErrors(err)
	}
	if len(errs) > 0 {
		form.Password = ""
		h.render(w, r, "pages/admins/form.html", map[string]any{"Errors": errs, "Form": form}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/admins", "success", "Admin created successfully")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.fetchAdmin(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/admins/form.html", map[string]any{
		"Errors": formErrors{},
		"Admin":  admin,
		"Form": adminForm{
			Name:  admin.Name,
			Email: admin.Email,
			Role:  admin.Role,
		},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	admin, ok := h.fetchAdmin(w, r)
	if !ok {
		return
	}
	form := adminForm{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Role:  r.PostFormValue("role"),
	}
	errs := h.validate(form)
	if len(errs) == 0 {
		patch := map[string]any{}
		if form.Name != admin.Name {
			patch["name"] = form.Name
		}
		if form.Email != admin.Email {
			patch["email"] = form.Email
		}
		if form.Role != admin.Role {
			patch["role"] = form.Role
		}
		errs = h.mutationErrors(h.service.Update(r.Context(), admin.ID, patch))
	}
	if len(errs) > 0 {
		h.render(w, r, "pages/admins/form.html", map[string]any{"Errors": errs, "Admin": admin, "Form": form}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/admins", "success", "Admin updated successfully")
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.fetchAdmin(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/admins/confirm_delete.html", map[string]any{"Admin": admin}, http.StatusOK)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete admin failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/admins", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/admins", "success", "Admin deleted")
}

// Helpers

func (h *Handler) validate(form adminForm) formErrors {
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

func (h *Handler) fetchAdmin(w http.ResponseWriter, r *http.Request) (*Admin, bool) {
	id := chi.URLParam(r, "id")
	admin, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get admin failed", slog.Any("error", err), slog.String("id", id))
		http.Error(w, "Admin not found", http.StatusNotFound)
		return nil, false
	}
	return admin, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Admins",
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
