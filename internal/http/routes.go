// Package httpx provides HTTP handlers and middleware for the platform API.
package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
	"github.com/syaquiii/innoventum-sub001/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	// OAuth enables the Google flow when non-nil.
	OAuth        ports.OAuthExchanger
	Table        RouteTable
	CookieDomain string
	// SessionMaxAge is the session cookie lifetime in seconds.
	SessionMaxAge int
	Logger        *slog.Logger
}

// NewRouter creates and configures the HTTP router. Navigation guarding wraps
// the router elsewhere; this mux only carries API and auth-flow routes.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:           services.Auth,
		OAuth:         services.OAuth,
		CookieDomain:  services.CookieDomain,
		SessionMaxAge: services.SessionMaxAge,
		Table:         services.Table,
		Logger:        services.Logger,
	}
	catalogHandlers := &CatalogHandlers{Svc: services.Catalog}

	registerAuthRoutes(mux, authHandlers)
	registerCatalogRoutes(mux, catalogHandlers, services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/me", h.Me)
	mux.HandleFunc("GET /auth/google/login", h.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", h.GoogleCallback)
}

func registerCatalogRoutes(mux *http.ServeMux, h *CatalogHandlers, auth *service.AuthService) {
	// Nil-safe middleware factories so route tests can skip auth wiring.
	adminOnly := func(hh http.Handler) http.Handler {
		if auth != nil {
			return RequireRole(auth, domainauth.RoleAdmin)(hh)
		}
		return hh
	}
	authed := func(hh http.Handler) http.Handler {
		if auth != nil {
			return RequireAuth(auth)(hh)
		}
		return hh
	}

	mux.HandleFunc("GET /api/courses", h.ListCourses)
	mux.HandleFunc("GET /api/courses/{slug}", h.GetCourse)
	mux.Handle("POST /api/courses", adminOnly(http.HandlerFunc(h.CreateCourse)))

	mux.HandleFunc("GET /api/threads", h.ListThreads)
	mux.Handle("POST /api/threads", authed(http.HandlerFunc(h.CreateThread)))

	mux.HandleFunc("GET /api/mentors", h.ListMentors)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
