package plans

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/console"
	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

// Handler manages the subscription plan pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	gate      gate.Middleware
	validator *validator.Validate
	lastGood  console.Snapshot[Plan]
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

// MountRoutes registers plan routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermPlansView, shared.PermPlansEdit))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(shared.PermPlansEdit))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.update)
		r.Get("/{id}/delete", h.confirmDelete)
		r.Post("/{id}/delete", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(shared.PermPlansApprove))
		r.Get("/pending", h.pending)
		r.Post("/{id}/approve", h.approve)
		r.Get("/{id}/reject", h.showRejectForm)
		r.Post("/{id}/reject", h.reject)
	})
}

type formErrors map[string]string

type listData struct {
	Plans      []Plan
	Query      string
	Status     string
	FetchError string
	Stale      bool
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	data := listData{
		Query:  r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}

	all, err := h.service.List(r.Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("list plans failed", slog.Any("error", err))
		all, data.Stale = h.lastGood.Get()
		data.FetchError = shared.UserSafeMessage(err)
	} else {
		h.lastGood.Put(all)
	}

	data.Plans = filter(all, data.Status, data.Query)
	h.render(w, r, "pages/plans/list.html", data, http.StatusOK)
}

func (h *Handler) pending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.Pending(r.Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("list pending plans failed", slog.Any("error", err))
		h.render(w, r, "pages/plans/pending.html", map[string]any{
			"FetchError": shared.UserSafeMessage(err),
		}, http.StatusOK)
		return
	}
	h.render(w, r, "pages/plans/pending.html", map[string]any{"Plans": pending}, http.StatusOK)
}

func filter(all []Plan, status, q string) []Plan {
	out := make([]Plan, 0, len(all))
	for _, p := range all {
		if status != "" && p.Status != status {
			continue
		}
		if !console.MatchesQuery(q, p.Name, p.Description) {
			continue
		}
		out = append(out, p)
	}
	return out
}

type planForm struct {
	Name        string `validate:"required"`
	Price       string `validate:"required"`
	Billing     string `validate:"required,oneof=monthly yearly"`
	Status      string `validate:"required,oneof=active inactive"`
	Features    string
	Description string
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/plans/form.html", map[string]any{"Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := readForm(r)
	errs, price := h.validate(form)
	if len(errs) == 0 {
		err := h.service.Create(r.Context(), CreateInput{
			Name:        form.Name,
			Price:       price,
			Billing:     form.Billing,
			Features:    splitFeatures(form.Features),
			Description: form.Description,
			Status:      form.Status,
		})
		errs = h.mutationErrors(err)
	}
	if len(errs) > 0 {
		h.render(w, r, "pages/plans/form.html", map[string]any{"Errors": errs, "Form": form}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/plans", "success", "Plan created successfully")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.fetchPlan(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/plans/form.html", map[string]any{
		"Errors": formErrors{},
		"Plan":   plan,
		"Form": planForm{
			Name:        plan.Name,
			Price:       strconv.FormatFloat(plan.Price, 'f', -1, 64),
			Billing:     plan.Billing,
			Status:      plan.Status,
			Features:    strings.Join(plan.Features, "\n"),
			Description: plan.Description,
		},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	plan, ok := h.fetchPlan(w, r)
	if !ok {
		return
	}
	form := readForm(r)
	errs, price := h.validate(form)
	if len(errs) == 0 {
		patch := map[string]any{}
		if form.Name != plan.Name {
			patch["name"] = form.Name
		}
		if price != plan.Price {
			patch["price"] = price
		}
		if form.Billing != plan.Billing {
			patch["billing"] = form.Billing
		}
		if form.Status != plan.Status {
			patch["status"] = form.Status
		}
		if features := splitFeatures(form.Features); !equalFeatures(features, plan.Features) {
			patch["features"] = features
		}
		if form.Description != plan.Description {
			patch["description"] = form.Description
		}
		errs = h.mutationErrors(h.service.Update(r.Context(), plan.ID, patch))
	}
	if len(errs) > 0 {
		h.render(w, r, "pages/plans/form.html", map[string]any{"Errors": errs, "Plan": plan, "Form": form}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/plans", "success", "Plan updated successfully")
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.fetchPlan(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/plans/confirm_delete.html", map[string]any{"Plan": plan}, http.StatusOK)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete plan failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/plans", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/plans", "success", "Plan deleted")
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Approve(r.Context(), id); err != nil {
		h.logger.Error("approve plan failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/plans/pending", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/plans/pending", "success", "Plan approved successfully")
}

func (h *Handler) showRejectForm(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.fetchPlan(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/plans/reject.html", map[string]any{"Plan": plan, "Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	reason := r.PostFormValue("reason")
	if reason == "" {
		plan, ok := h.fetchPlan(w, r)
		if !ok {
			return
		}
		h.render(w, r, "pages/plans/reject.html", map[string]any{
			"Plan":   plan,
			"Errors": formErrors{"reason": "A rejection reason is required"},
		}, http.StatusBadRequest)
		return
	}
	if err := h.service.Reject(r.Context(), id, reason); err != nil {
		h.logger.Error("reject plan failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/plans/pending", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/plans/pending", "success", "Plan rejected")
}

// Helpers

func readForm(r *http.Request) planForm {
	return planForm{
		Name:        r.PostFormValue("name"),
		Price:       r.PostFormValue("price"),
		Billing:     r.PostFormValue("billing"),
		Status:      r.PostFormValue("status"),
		Features:    r.PostFormValue("features"),
		Description: r.PostFormValue("description"),
	}
}

func (h *Handler) validate(form planForm) (formErrors, float64) {
	errs := formErrors{}
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Name":
				errs["name"] = "Name is required"
			case "Price":
				errs["price"] = "Price is required"
			case "Billing":
				errs["billing"] = "Choose a billing cycle"
			case "Status":
				errs["status"] = "Choose a valid status"
			}
		}
	}
	price, err := strconv.ParseFloat(form.Price, 64)
	if form.Price != "" && (err != nil || price < 0) {
		errs["price"] = "Price must be a non-negative number"
	}
	return errs, price
}

func (h *Handler) mutationErrors(err error) formErrors {
	if err == nil {
		return nil
	}
	errs := formErrors{}
	for k, v := range api.FieldErrors(err) {
		errs[k] = v
	}
	if api.IsConflict(err) && errs["name"] == "" {
		errs["name"] = "A plan with this name already exists"
	}
	if len(errs) == 0 {
		errs["general"] = shared.UserSafeMessage(err)
	}
	return errs
}

func splitFeatures(raw string) []string {
	var features []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			features = append(features, line)
		}
	}
	return features
}

func equalFeatures(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (h *Handler) fetchPlan(w http.ResponseWriter, r *http.Request) (*Plan, bool) {
	id := chi.URLParam(r, "id")
	plan, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get plan failed", slog.Any("error", err), slog.String("id", id))
		http.Error(w, "Plan not found", http.StatusNotFound)
		return nil, false
	}
	return plan, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Plans",
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
