package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
	"github.com/syaquiii/innoventum-sub001/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	OAuthSignIn(ctx context.Context, profile ports.OAuthProfile) (*service.Session, error)
	DecodeToken(token string) (domainauth.Claims, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	OAuth        ports.OAuthExchanger // nil disables the Google flow
	CookieDomain string
	// SessionMaxAge is the session cookie lifetime in seconds.
	SessionMaxAge int
	Table         RouteTable
	Logger        *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the credential sign-in payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles the credential sign-in entry point.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, err := h.Svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		code := http.StatusUnauthorized
		if errors.Is(err, service.ErrTooManyAttempts) {
			code = http.StatusTooManyRequests
		}
		// The reason string is user-facing; the raw error never leaves here.
		WriteJSON(w, code, map[string]string{
			"error":   "sign_in_failed",
			"message": service.SignInMessage(err),
		})
		return
	}

	h.establishSession(w, r, sess)
	WriteJSON(w, http.StatusOK, sessionPayload(sess))
}

// registerRequest is the registration payload.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new-account registration.
// POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, err := h.Svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeRegisterError(w, r, err)
		return
	}

	h.establishSession(w, r, sess)
	WriteJSON(w, http.StatusCreated, sessionPayload(sess))
}

func (h *AuthHandlers) writeRegisterError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	switch {
	case apperrors.IsValidation(err):
		errors.As(err, &appErr)
		WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "validation",
			"field":   appErr.Field,
			"message": appErr.Message,
		})
	case apperrors.IsConflict(err):
		WriteJSON(w, http.StatusConflict, map[string]string{
			"error":   "email_taken",
			"message": "Email ini sudah terdaftar.",
		})
	default:
		h.logger().ErrorContext(r.Context(), "registration failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "registration_failed",
			Err:     errors.New("registration failed"),
		})
	}
}

// Logout clears the client-held session. The server keeps no session table,
// so discarding the cookie is the whole operation.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r, h.CookieDomain)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Me returns the current authentication status.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromRequest(r, h.Svc)
	if claims == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          claimsPayload(*claims),
	})
}

// GoogleLogin redirects to the Google consent screen.
// GET /auth/google/login.
func (h *AuthHandlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		http.NotFound(w, r)
		return
	}

	authURL, state, nonce, err := h.OAuth.Begin(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin oauth flow failed", "error", err)
		h.redirectLoginError(w, r)
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{
		State: state,
		Nonce: nonce,
		Next:  safeRedirectPath(r.URL.Query().Get("next")),
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback completes the Google flow: verify state, exchange the code,
// link-or-provision the identity, and establish a session. Every failure is a
// denial — the user lands back on the login page, never in a half-signed-in
// state.
// GET /auth/google/callback.
func (h *AuthHandlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		http.NotFound(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie("oauth_state")
	if code == "" || state == "" || err != nil || stateCookie.Value != state {
		h.redirectLoginError(w, r)
		return
	}
	nonce := ""
	if nonceCookie, cookieErr := r.Cookie("oauth_nonce"); cookieErr == nil {
		nonce = nonceCookie.Value
	}

	profile, err := h.OAuth.Exchange(r.Context(), code, nonce)
	if err != nil {
		h.logger().WarnContext(r.Context(), "oauth exchange failed", "error", err)
		h.redirectLoginError(w, r)
		return
	}

	sess, err := h.Svc.OAuthSignIn(r.Context(), profile)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "oauth sign-in failed", "error", err)
		h.redirectLoginError(w, r)
		return
	}

	h.establishSession(w, r, sess)
	h.clearOAuthCookies(w, r)

	target := h.Table.UserHome
	if sess.Claims.IsAdmin() {
		target = h.Table.AdminHome
	}
	// Honor a pre-flow destination when one was requested and is same-origin.
	if nextCookie, cookieErr := r.Cookie("oauth_next"); cookieErr == nil {
		if next := safeRedirectPath(nextCookie.Value); next != "/" {
			target = next
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// establishSession sets the session cookie and clears transient state.
func (h *AuthHandlers) establishSession(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	maxAge := h.SessionMaxAge
	if maxAge <= 0 {
		maxAge = 24 * 60 * 60
	}
	setSessionCookie(w, r, sessionCookieParams{
		Domain: h.CookieDomain,
		Token:  sess.Token,
		MaxAge: maxAge,
	})
}

func (h *AuthHandlers) redirectLoginError(w http.ResponseWriter, r *http.Request) {
	u := url.URL{Path: h.Table.LoginPath, RawQuery: url.Values{"error": {"oauth"}}.Encode()}
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// oauthCookieParams groups the transient values round-tripped through cookies.
type oauthCookieParams struct {
	State string
	Nonce string
	Next  string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login destination in
// short-lived secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := isSecureRequest(r)
	values := map[string]string{"oauth_state": p.State, "oauth_nonce": p.Nonce}
	if p.Next != "" && p.Next != "/" {
		values["oauth_next"] = p.Next
	}
	for name, value := range values {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

func (h *AuthHandlers) clearOAuthCookies(w http.ResponseWriter, r *http.Request) {
	isSecure := isSecureRequest(r)
	for _, name := range []string{"oauth_state", "oauth_nonce", "oauth_next"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			MaxAge:   -1,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// sessionPayload shapes the JSON body for a fresh session.
func sessionPayload(sess *service.Session) map[string]any {
	return map[string]any{
		"status": "success",
		"user": map[string]any{
			"id":    sess.Identity.ID,
			"name":  sess.Identity.Name,
			"email": sess.Identity.Email,
			"role":  sess.Identity.Role,
		},
	}
}

// claimsPayload shapes decoded claims for the status endpoint. The profile id
// is reported under the key matching the role.
func claimsPayload(claims domainauth.Claims) map[string]any {
	out := map[string]any{
		"id":   claims.Subject,
		"role": claims.Role,
	}
	if claims.ProfileID != nil {
		key := "student_profile_id"
		if claims.IsAdmin() {
			key = "admin_profile_id"
		}
		out[key] = *claims.ProfileID
	}
	return out
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/". Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
