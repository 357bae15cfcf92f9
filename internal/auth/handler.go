package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router. loginLimiter, when
// non-nil, throttles credential guessing on the POST endpoint.
func (h *Handler) MountRoutes(r chi.Router, loginLimiter func(http.Handler) http.Handler) {
	r.Get("/login", h.showLogin)
	if loginLimiter != nil {
		r.With(loginLimiter).Post("/login", h.handleLogin)
	} else {
		r.Post("/login", h.handleLogin)
	}
	r.Post("/logout", h.handleLogout)
}

// MountSettingsRoutes registers the authenticated settings routes.
func (h *Handler) MountSettingsRoutes(r chi.Router) {
	r.Get("/password", h.showChangePassword)
	r.Post("/password", h.handleChangePassword)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	UserType string `validate:"required,oneof=admin staff"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if shared.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginPageData{Form: loginForm{UserType: shared.UserTypeStaff}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		UserType: r.PostFormValue("user_type"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = "Please provide a valid " + fieldErr.Field()
		}
	}
	if len(errs) > 0 {
		form.Password = ""
		h.renderLogin(w, r, loginPageData{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}

	result, err := h.service.Login(r.Context(), form.Email, form.Password, form.UserType)
	if err != nil {
		if api.IsUnauthorized(err) {
			errs["general"] = "Invalid email or password"
		} else {
			h.logger.Error("login failed", slog.Any("error", err))
			errs["general"] = shared.UserSafeMessage(err)
		}
		form.Password = ""
		h.renderLogin(w, r, loginPageData{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SetCredentials(result.AccessToken, result.User)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + result.User.Name})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Idempotent: clearing an anonymous session is a no-op.
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Clear()
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

type changePasswordForm struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

func (h *Handler) showChangePassword(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := changePasswordForm{
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "NewPassword":
				errs["new_password"] = "New password must be at least 8 characters"
			case "ConfirmPassword":
				errs["confirm_password"] = "Passwords do not match"
			default:
				errs["current_password"] = "Current password is required"
			}
		}
	}
	if len(errs) == 0 {
		if err := h.service.ChangePassword(r.Context(), form.CurrentPassword, form.NewPassword); err != nil {
			if fields := api.FieldErrors(err); len(fields) > 0 {
				for k, v := range fields {
					errs[k] = v
				}
			} else {
				errs["general"] = shared.UserSafeMessage(err)
			}
		}
	}
	if len(errs) > 0 {
		h.renderSettings(w, r, errs, http.StatusBadRequest)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Password updated"})
	}
	http.Redirect(w, r, "/settings/password", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	h.render(w, r, "pages/login.html", "Sign in", data, status)
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, errs map[string]string, status int) {
	h.render(w, r, "pages/settings.html", "Settings", map[string]any{"Errors": errs}, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFField:   csrf.TemplateField(r),
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        sess.User(),
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}
