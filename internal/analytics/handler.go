package analytics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"golang.org/x/sync/errgroup"

	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

// Handler serves the dashboard and analytics pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	gate      gate.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, gm gate.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, gate: gm}
}

// MountRoutes registers the analytics report page.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(shared.PermAnalyticsView))
		r.Get("/", h.reports)
	})
}

// Dashboard renders the landing page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Dashboard(r.Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load dashboard failed", slog.Any("error", err))
		h.render(w, r, "pages/dashboard.html", "Dashboard", map[string]any{
			"FetchError": shared.UserSafeMessage(err),
		}, http.StatusOK)
		return
	}
	h.render(w, r, "pages/dashboard.html", "Dashboard", map[string]any{"Dashboard": data}, http.StatusOK)
}

type reportData struct {
	Overview  *Overview
	Revenue   *Revenue
	Users     *UserStats
	Plans     *PlanStats
	Referrals *ReferralStats
}

func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	data, err := h.loadReportData(r)
	if err != nil {
		if api.IsUnauthorized(err) {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("load analytics failed", slog.Any("error", err))
		h.render(w, r, "pages/analytics.html", "Analytics", map[string]any{
			"FetchError": shared.UserSafeMessage(err),
		}, http.StatusOK)
		return
	}
	h.render(w, r, "pages/analytics.html", "Analytics", map[string]any{"Reports": data}, http.StatusOK)
}

// loadReportData fetches the five report payloads concurrently; the page
// renders nothing until all of them resolve.
func (h *Handler) loadReportData(r *http.Request) (*reportData, error) {
	var data reportData
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		overview, err := h.service.Overview(ctx)
		if err != nil {
			return err
		}
		data.Overview = overview
		return nil
	})
	g.Go(func() error {
		revenue, err := h.service.Revenue(ctx)
		if err != nil {
			return err
		}
		data.Revenue = revenue
		return nil
	})
	g.Go(func() error {
		users, err := h.service.Users(ctx)
		if err != nil {
			return err
		}
		data.Users = users
		return nil
	})
	g.Go(func() error {
		plans, err := h.service.Plans(ctx)
		if err != nil {
			return err
		}
		data.Plans = plans
		return nil
	})
	g.Go(func() error {
		referrals, err := h.service.Referrals(ctx)
		if err != nil {
			return err
		}
		data.Referrals = referrals
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
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
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
