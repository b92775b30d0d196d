package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	"github.com/syaquiii/innoventum-sub001/internal/service"
)

// stubAuthority is a test double for SessionAuthority with a fixed token map.
type stubAuthority struct {
	tokens      map[string]domainauth.Claims
	refreshFunc func(ctx context.Context, claims domainauth.Claims) (*service.Session, error)
}

func (s *stubAuthority) DecodeToken(token string) (domainauth.Claims, error) {
	claims, ok := s.tokens[token]
	if !ok {
		return domainauth.Claims{}, errors.New("invalid token")
	}
	return claims, nil
}

func (s *stubAuthority) Refresh(
	ctx context.Context,
	claims domainauth.Claims,
) (*service.Session, error) {
	if s.refreshFunc != nil {
		return s.refreshFunc(ctx, claims)
	}
	return nil, errors.New("refresh not configured")
}

func newGuard(authority SessionAuthority, refreshAfter time.Duration) http.Handler {
	guard := NavigationGuard(GuardConfig{
		Authority:    authority,
		Table:        DefaultRouteTable(),
		RefreshAfter: refreshAfter,
	})
	return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := GetClaimsFromContext(r.Context()); ok {
			w.Header().Set("X-Test-Subject", claims.Subject)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func getWithCookie(t *testing.T, handler http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNavigationGuard_AnonymousRedirectedToLogin(t *testing.T) {
	handler := newGuard(&stubAuthority{tokens: map[string]domainauth.Claims{}}, 0)

	rec := getWithCookie(t, handler, "/dasbor", "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestNavigationGuard_StudentAllowedOnDashboard(t *testing.T) {
	authority := &stubAuthority{tokens: map[string]domainauth.Claims{
		"good": {Subject: "42", Role: domainauth.RoleStudent},
	}}
	handler := newGuard(authority, 0)

	rec := getWithCookie(t, handler, "/dasbor", "good")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("X-Test-Subject"))
}

func TestNavigationGuard_StudentRedirectedFromAdmin(t *testing.T) {
	authority := &stubAuthority{tokens: map[string]domainauth.Claims{
		"good": {Subject: "42", Role: domainauth.RoleStudent},
	}}
	handler := newGuard(authority, 0)

	rec := getWithCookie(t, handler, "/admin/dashboard", "good")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dasbor", rec.Header().Get("Location"))
}

func TestNavigationGuard_AdminRedirectedAwayFromLogin(t *testing.T) {
	authority := &stubAuthority{tokens: map[string]domainauth.Claims{
		"good": {Subject: "1", Role: domainauth.RoleAdmin},
	}}
	handler := newGuard(authority, 0)

	rec := getWithCookie(t, handler, "/login", "good")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}

// An undecodable cookie must behave exactly like no cookie at all.
func TestNavigationGuard_BadTokenIsAnonymous(t *testing.T) {
	handler := newGuard(&stubAuthority{tokens: map[string]domainauth.Claims{}}, 0)

	rec := getWithCookie(t, handler, "/dasbor", "forged-or-expired")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// A redirect-away page stays reachable for the bad-token bearer.
	rec = getWithCookie(t, handler, "/login", "forged-or-expired")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNavigationGuard_ExemptPathsBypassPolicy(t *testing.T) {
	handler := newGuard(&stubAuthority{tokens: map[string]domainauth.Claims{}}, 0)

	rec := getWithCookie(t, handler, "/api/courses", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

// A token older than the refresh age gets re-issued from the latest identity
// state; the refreshed claims govern the decision.
func TestNavigationGuard_RefreshPicksUpRoleChange(t *testing.T) {
	oldClaims := domainauth.Claims{
		Subject:  "42",
		Role:     domainauth.RoleStudent,
		IssuedAt: time.Now().Add(-2 * time.Hour),
	}
	authority := &stubAuthority{
		tokens: map[string]domainauth.Claims{"stale": oldClaims},
		refreshFunc: func(_ context.Context, claims domainauth.Claims) (*service.Session, error) {
			return &service.Session{
				Token:  "fresh",
				Claims: domainauth.Claims{Subject: claims.Subject, Role: domainauth.RoleAdmin, IssuedAt: time.Now()},
			}, nil
		},
	}
	handler := newGuard(authority, time.Hour)

	rec := getWithCookie(t, handler, "/admin/dashboard", "stale")

	assert.Equal(t, http.StatusOK, rec.Code)

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "refresh must rotate the session cookie")
	assert.Equal(t, "fresh", sessionCookie.Value)
}

func TestNavigationGuard_RefreshVanishedAccountDowngrades(t *testing.T) {
	authority := &stubAuthority{
		tokens: map[string]domainauth.Claims{
			"stale": {Subject: "42", Role: domainauth.RoleStudent, IssuedAt: time.Now().Add(-2 * time.Hour)},
		},
		refreshFunc: func(_ context.Context, _ domainauth.Claims) (*service.Session, error) {
			return nil, service.ErrAccountNotFound
		},
	}
	handler := newGuard(authority, time.Hour)

	rec := getWithCookie(t, handler, "/dasbor", "stale")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Empty(t, sessionCookie.Value)
	assert.Negative(t, sessionCookie.MaxAge)
}

// A transient refresh failure keeps the current claims for this request.
func TestNavigationGuard_RefreshFailureKeepsClaims(t *testing.T) {
	authority := &stubAuthority{
		tokens: map[string]domainauth.Claims{
			"stale": {Subject: "42", Role: domainauth.RoleStudent, IssuedAt: time.Now().Add(-2 * time.Hour)},
		},
		refreshFunc: func(_ context.Context, _ domainauth.Claims) (*service.Session, error) {
			return nil, errors.New("store timeout")
		},
	}
	handler := newGuard(authority, time.Hour)

	rec := getWithCookie(t, handler, "/dasbor", "stale")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("X-Test-Subject"))
}

func TestRequireAuth(t *testing.T) {
	authority := &stubAuthority{tokens: map[string]domainauth.Claims{
		"good": {Subject: "42", Role: domainauth.RoleStudent},
	}}
	handler := RequireAuth(authority)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := getWithCookie(t, handler, "/api/threads", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = getWithCookie(t, handler, "/api/threads", "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = getWithCookie(t, handler, "/api/threads", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	authority := &stubAuthority{tokens: map[string]domainauth.Claims{
		"student": {Subject: "42", Role: domainauth.RoleStudent},
		"admin":   {Subject: "1", Role: domainauth.RoleAdmin},
	}}
	handler := RequireRole(authority, domainauth.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rec := getWithCookie(t, handler, "/api/courses", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = getWithCookie(t, handler, "/api/courses", "student")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = getWithCookie(t, handler, "/api/courses", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
}
