package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	"github.com/syaquiii/innoventum-sub001/internal/service"
)

// sessionCookieName is the HTTP-only cookie carrying the signed session token.
const sessionCookieName = "session_token"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// TokenDecoder decodes a session token into claims.
type TokenDecoder interface {
	DecodeToken(token string) (domainauth.Claims, error)
}

// SessionAuthority is the slice of the auth service the middleware needs.
type SessionAuthority interface {
	TokenDecoder
	Refresh(ctx context.Context, claims domainauth.Claims) (*service.Session, error)
}

// GuardConfig groups dependencies for NavigationGuard.
type GuardConfig struct {
	Authority SessionAuthority
	Table     RouteTable
	// RefreshAfter re-derives claims from the identity store once a token is
	// older than this. Zero disables in-flight refresh.
	RefreshAfter time.Duration
	CookieDomain string
	Logger       *slog.Logger
}

// NavigationGuard intercepts every navigational request and applies the route
// table: allow, or redirect. A token that fails to decode is treated exactly
// like an absent one — the guard never surfaces a decode error to the user,
// and every request reaches a decision.
func NavigationGuard(cfg GuardConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Table.IsExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims := claimsFromRequest(r, cfg.Authority)
			claims = cfg.maybeRefresh(w, r, claims, logger)

			decision := cfg.Table.Decide(r.URL.Path, claims)
			if !decision.Allowed() {
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetClaimsInContext(r.Context(), claims)))
		})
	}
}

// maybeRefresh re-issues the session token from the latest identity state once
// it passes the refresh age. A vanished identity downgrades to anonymous; a
// transient store failure keeps the current claims for this request.
func (cfg GuardConfig) maybeRefresh(
	w http.ResponseWriter,
	r *http.Request,
	claims *domainauth.Claims,
	logger *slog.Logger,
) *domainauth.Claims {
	if claims == nil || cfg.RefreshAfter <= 0 {
		return claims
	}
	if claims.IssuedAt.IsZero() || time.Since(claims.IssuedAt) < cfg.RefreshAfter {
		return claims
	}

	sess, err := cfg.Authority.Refresh(r.Context(), *claims)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			clearSessionCookie(w, r, cfg.CookieDomain)
			return nil
		}
		logger.WarnContext(r.Context(), "session refresh failed", "error", err)
		return claims
	}

	setSessionCookie(w, r, sessionCookieParams{
		Domain: cfg.CookieDomain,
		Token:  sess.Token,
		MaxAge: int(cfg.sessionMaxAge().Seconds()),
	})
	refreshed := sess.Claims
	return &refreshed
}

func (cfg GuardConfig) sessionMaxAge() time.Duration {
	// The cookie outlives refresh cycles; token expiry governs validity.
	return 24 * time.Hour
}

// RequireAuth returns a middleware for API routes that requires a valid session.
// Unauthenticated requests get a 401 JSON response, never a redirect.
func RequireAuth(authority SessionAuthority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromRequest(r, authority)
			if claims == nil {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetClaimsInContext(r.Context(), claims)))
		})
	}
}

// RequireRole returns a middleware for API routes that requires a specific role.
// Roles are disjoint, so the check is exact rather than hierarchical.
func RequireRole(authority SessionAuthority, role domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromRequest(r, authority)
			if claims == nil {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			if claims.Role != role {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetClaimsInContext(r.Context(), claims)))
		})
	}
}

// claimsFromRequest decodes the session cookie. Any failure (no cookie, bad
// signature, expiry) yields nil, indistinguishable from anonymous.
func claimsFromRequest(r *http.Request, authority TokenDecoder) *domainauth.Claims {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := authority.DecodeToken(cookie.Value)
	if err != nil {
		return nil
	}
	return &claims
}

// sessionCookieParams groups values needed to set the session cookie.
type sessionCookieParams struct {
	Domain string
	Token  string
	MaxAge int
}

// setSessionCookie writes the session cookie, mirroring the request scheme
// for the Secure attribute.
func setSessionCookie(w http.ResponseWriter, r *http.Request, p sessionCookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    p.Token,
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   p.MaxAge,
	})
}

// clearSessionCookie clears the session cookie by expiring it immediately.
// It mirrors the attributes used when setting cookies to maximize browser
// compatibility during deletion.
func clearSessionCookie(w http.ResponseWriter, r *http.Request, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
