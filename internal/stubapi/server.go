// Package stubapi is an in-memory stand-in for the Meridian backend. It
// implements the slice of the REST API the console consumes, seeded with
// fixture data, so the console can be developed and demoed without the
// real platform running.
package stubapi

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridianpay/console/internal/console/admins"
	"github.com/meridianpay/console/internal/console/plans"
	"github.com/meridianpay/console/internal/console/staff"
	"github.com/meridianpay/console/internal/console/users"
	"github.com/meridianpay/console/internal/platform/httpx"
	"github.com/meridianpay/console/internal/shared"
)

const tokenTTL = 24 * time.Hour

// Server holds the fixture state behind one mutex. The dataset is small
// enough that copying slices under the lock costs nothing.
type Server struct {
	logger *slog.Logger
	secret []byte

	mu       sync.Mutex
	accounts []account
	users    []users.User
	plans    []plans.Plan
	staff    []staff.Staff
	admins   []admins.Admin
}

// New builds a Server seeded with fixtures. The secret signs access tokens.
func New(logger *slog.Logger, secret string) *Server {
	return &Server{
		logger:   logger,
		secret:   []byte(secret),
		accounts: seedAccounts(),
		users:    seedUsers(),
		plans:    seedPlans(),
		staff:    seedStaff(),
		admins:   seedAdmins(),
	}
}

// Handler returns the backend's console API surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/console", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/auth/me", s.me)
			r.Post("/auth/change-password", s.changePassword)

			s.mountUserRoutes(r)
			s.mountPlanRoutes(r)
			s.mountStaffRoutes(r)
			s.mountAdminRoutes(r)
			s.mountAnalyticsRoutes(r)
		})
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	User        shared.Identity `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.findAccount(req.Email, req.UserType)
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		s.logger.Info("login rejected", "email", req.Email)
		httpx.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issueToken(acct.identity)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{AccessToken: token, User: acct.identity})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, id)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	id := identityFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].identity.ID != id.ID {
			continue
		}
		if bcrypt.CompareHashAndPassword(s.accounts[i].passwordHash, []byte(req.CurrentPassword)) != nil {
			httpx.Error(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "Could not update password")
			return
		}
		s.accounts[i].passwordHash = hash
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
		return
	}
	httpx.Error(w, http.StatusNotFound, "Account not found")
}

func (s *Server) issueToken(id shared.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      id.ID,
		"email":    id.Email,
		"userType": id.UserType,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			httpx.Error(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})).ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		})
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		sub, _ := claims["sub"].(string)
		s.mu.Lock()
		acct, ok := s.findAccountByID(sub)
		s.mu.Unlock()
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "Unknown account")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithIdentity(r.Context(), acct.identity)))
	})
}

func (s *Server) findAccount(email, userType string) (account, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.identity.Email, email) && a.identity.UserType == userType {
			return a, true
		}
	}
	return account{}, false
}

func (s *Server) findAccountByID(id string) (account, bool) {
	for _, a := range s.accounts {
		if a.identity.ID == id {
			return a, true
		}
	}
	return account{}, false
}
