package shared

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names used by the console session.
const (
	TokenCookie = "mc_token"
	UserCookie  = "mc_user"
	FlashCookie = "mc_flash"
)

// FlashMessage represents a one-time notification rendered on the next page.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionManager reads and writes the cookie-backed console session. The
// bearer token and the serialized user profile live in two cookies so a
// server-rendered page knows the auth state on first paint without any
// client-side rehydration.
type SessionManager struct {
	ttl    time.Duration
	secure bool
}

// Session holds the per-request authentication state. The token and the user
// profile are written and cleared together; Load never yields one without
// the other. Handlers that fan requests out over goroutines share one
// Session, so access is guarded by a mutex.
type Session struct {
	mu         sync.Mutex
	token      string
	user       *Identity
	flashes    []FlashMessage
	dirty      bool
	flashDirty bool
	destroyed  bool
}

// NewSessionManager constructs a SessionManager. ttl caps how long the
// credential cookies live; the backend remains the source of truth for
// actual token expiry.
func NewSessionManager(ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{ttl: ttl, secure: secure}
}

// Load builds the session from request cookies. A malformed or partial
// cookie pair self-heals: the session loads anonymous and both cookies are
// expired on commit.
func (sm *SessionManager) Load(r *http.Request) *Session {
	sess := &Session{}
	sess.flashes = readFlashes(r)

	token := cookieValue(r, TokenCookie)
	rawUser := cookieValue(r, UserCookie)
	if token == "" && rawUser == "" {
		return sess
	}
	if token == "" || rawUser == "" {
		sess.destroyed = true
		return sess
	}

	decoded, err := url.QueryUnescape(rawUser)
	if err != nil {
		sess.destroyed = true
		return sess
	}
	var user Identity
	if err := json.Unmarshal([]byte(decoded), &user); err != nil || user.ID == "" {
		sess.destroyed = true
		return sess
	}

	sess.token = token
	sess.user = &user
	return sess
}

// Commit writes cookie headers reflecting the session state. It must run
// before the response body starts.
func (sm *SessionManager) Commit(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.destroyed && sess.token == "" {
		sm.expire(w, TokenCookie)
		sm.expire(w, UserCookie)
	} else if sess.dirty {
		expires := sm.credentialExpiry(sess.token)
		payload, err := json.Marshal(sess.user)
		if err != nil {
			return err
		}
		sm.set(w, TokenCookie, sess.token, expires)
		sm.set(w, UserCookie, url.QueryEscape(string(payload)), expires)
		sess.dirty = false
	}

	if sess.flashDirty {
		if len(sess.flashes) == 0 {
			sm.expire(w, FlashCookie)
		} else {
			data, err := json.Marshal(sess.flashes)
			if err != nil {
				return err
			}
			sm.set(w, FlashCookie, base64.RawURLEncoding.EncodeToString(data), time.Now().Add(10*time.Minute))
		}
		sess.flashDirty = false
	}
	return nil
}

// TTL exposes the configured credential cookie lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// credentialExpiry returns the cookie expiry: the configured ceiling, capped
// at the token's own exp claim when the token is a readable JWT.
func (sm *SessionManager) credentialExpiry(token string) time.Time {
	expires := time.Now().Add(sm.ttl)
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return expires
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return expires
	}
	if exp.Time.Before(expires) && exp.Time.After(time.Now()) {
		return exp.Time
	}
	return expires
}

func (sm *SessionManager) set(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (sm *SessionManager) expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Session helpers

// Token returns the bearer token, empty when anonymous.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the authenticated profile, nil when anonymous.
func (s *Session) User() *Identity {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SetCredentials stores the token and profile together.
func (s *Session) SetCredentials(token string, user Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
	s.dirty = true
	s.destroyed = false
}

// Clear removes the credentials. Safe to call on an anonymous session.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.dirty = false
	s.destroyed = true
}

// AddFlash queues a flash message for the next rendered page.
func (s *Session) AddFlash(msg FlashMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, msg)
	s.flashDirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.flashDirty = true
	return &msg
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func readFlashes(r *http.Request) []FlashMessage {
	raw := cookieValue(r, FlashCookie)
	if raw == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []FlashMessage
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
