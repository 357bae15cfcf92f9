package shared

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitToRequest(t *testing.T, sm *SessionManager, sess *Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(rec, sess))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	sm := NewSessionManager(time.Hour, false)

	sess := &Session{}
	sess.SetCredentials("token-123", Identity{
		ID:          "stf-1",
		Email:       "a@b.test",
		Name:        "A",
		Role:        RoleCustomerSupport,
		UserType:    UserTypeStaff,
		Permissions: []string{PermUsersView},
	})

	loaded := sm.Load(commitToRequest(t, sm, sess))
	require.NotNil(t, loaded.User())
	assert.Equal(t, "token-123", loaded.Token())
	assert.Equal(t, "stf-1", loaded.User().ID)
	assert.Equal(t, []string{PermUsersView}, loaded.User().Permissions)
}

func TestSessionClearExpiresCookies(t *testing.T) {
	sm := NewSessionManager(time.Hour, false)

	sess := &Session{}
	sess.SetCredentials("token-123", Identity{ID: "u1"})
	sess.Clear()

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(rec, sess))

	expired := 0
	for _, c := range rec.Result().Cookies() {
		if c.Name == TokenCookie || c.Name == UserCookie {
			assert.Equal(t, -1, c.MaxAge)
			expired++
		}
	}
	assert.Equal(t, 2, expired)
}

func TestSessionLoadAnonymous(t *testing.T) {
	sm := NewSessionManager(time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess := sm.Load(req)
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())
}

func TestSessionLoadSelfHeals(t *testing.T) {
	sm := NewSessionManager(time.Hour, false)

	cases := map[string][]*http.Cookie{
		"token without user": {
			{Name: TokenCookie, Value: "tok"},
		},
		"user without token": {
			{Name: UserCookie, Value: url.QueryEscape(`{"id":"u1"}`)},
		},
		"garbage user payload": {
			{Name: TokenCookie, Value: "tok"},
			{Name: UserCookie, Value: url.QueryEscape("{not json")},
		},
		"user without id": {
			{Name: TokenCookie, Value: "tok"},
			{Name: UserCookie, Value: url.QueryEscape(`{"email":"a@b.test"}`)},
		},
	}

	for name, cookies := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range cookies {
				req.AddCookie(c)
			}
			sess := sm.Load(req)
			assert.Nil(t, sess.User())
			assert.Empty(t, sess.Token())

			// The broken pair is expired on the way out.
			rec := httptest.NewRecorder()
			require.NoError(t, sm.Commit(rec, sess))
			expired := map[string]bool{}
			for _, c := range rec.Result().Cookies() {
				if c.MaxAge < 0 {
					expired[c.Name] = true
				}
			}
			assert.True(t, expired[TokenCookie])
			assert.True(t, expired[UserCookie])
		})
	}
}

func TestSessionFlashRoundTrip(t *testing.T) {
	sm := NewSessionManager(time.Hour, false)

	sess := &Session{}
	sess.AddFlash(FlashMessage{Kind: "success", Message: "saved"})
	sess.AddFlash(FlashMessage{Kind: "error", Message: "oops"})

	loaded := sm.Load(commitToRequest(t, sm, sess))

	first := loaded.PopFlash()
	require.NotNil(t, first)
	assert.Equal(t, "saved", first.Message)
	second := loaded.PopFlash()
	require.NotNil(t, second)
	assert.Equal(t, "error", second.Message)
	assert.Nil(t, loaded.PopFlash())

	// Popping everything expires the flash cookie.
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(rec, loaded))
	for _, c := range rec.Result().Cookies() {
		if c.Name == FlashCookie {
			assert.Equal(t, -1, c.MaxAge)
		}
	}
}

func TestCredentialExpiryCappedByTokenExp(t *testing.T) {
	sm := NewSessionManager(7*24*time.Hour, false)

	exp := time.Now().Add(2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	sess := &Session{}
	sess.SetCredentials(token, Identity{ID: "u1"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(rec, sess))
	for _, c := range rec.Result().Cookies() {
		if c.Name == TokenCookie {
			assert.WithinDuration(t, exp, c.Expires, time.Minute)
		}
	}
}

func TestCredentialExpiryOpaqueTokenUsesTTL(t *testing.T) {
	ttl := time.Hour
	sm := NewSessionManager(ttl, false)

	sess := &Session{}
	sess.SetCredentials("not-a-jwt", Identity{ID: "u1"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(rec, sess))
	for _, c := range rec.Result().Cookies() {
		if c.Name == TokenCookie {
			assert.WithinDuration(t, time.Now().Add(ttl), c.Expires, time.Minute)
		}
	}
}

// The dashboard fans several API calls out over goroutines that share one
// session; an expired token makes each of them clear it concurrently.
func TestSessionConcurrentClearKeepsPairConsistent(t *testing.T) {
	sess := &Session{}
	sess.SetCredentials("token-123", Identity{ID: "stf-1", UserType: UserTypeStaff})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = sess.Token()
				_ = sess.User()
				sess.Clear()
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())
}
