package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFField   template.HTML
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *shared.Identity
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatMoney": formatMoney,
		"can": func(u *shared.Identity, perm string) bool {
			return u.HasPermission(perm)
		},
		"canAny": func(u *shared.Identity, perms ...string) bool {
			return gate.Allowed(u, gate.Requirement{AnyOf: perms})
		},
		"canAll": func(u *shared.Identity, perms ...string) bool {
			return gate.Allowed(u, gate.Requirement{AllOf: perms})
		},
		"isSuperAdmin": func(u *shared.Identity) bool {
			return u.IsSuperAdmin()
		},
		"title": func(s string) string {
			s = strings.ReplaceAll(s, "_", " ")
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html", "templates/pages/*/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Forbidden returns a handler rendering the access-denied page. Route guards
// use it so a permission failure looks like every other console page.
func (e *Engine) Forbidden() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_ = e.Render(w, "pages/403.html", TemplateData{
			Title:       "Access denied",
			CurrentPath: r.URL.Path,
			User:        shared.CurrentUser(r.Context()),
		})
	})
}

func formatMoney(amount float64) string {
	return "$" + trimZeros(fmt.Sprintf("%.2f", amount))
}

func trimZeros(s string) string {
	return strings.TrimSuffix(s, ".00")
}
