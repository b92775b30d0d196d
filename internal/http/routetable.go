package httpx

import (
	"strings"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
)

// RouteClass is the access class a navigational path belongs to.
type RouteClass string

const (
	// RouteRedirectAway sends authenticated users to their role's home
	// (login/registration/landing pages — a signed-in user never sees them).
	RouteRedirectAway RouteClass = "redirect-away"
	// RouteAdminOnly requires an admin session.
	RouteAdminOnly RouteClass = "admin-only"
	// RouteUserOnly requires a non-admin session (dashboard, profile).
	RouteUserOnly RouteClass = "user-only"
	// RoutePublic is reachable by anyone; it is the implicit default.
	RoutePublic RouteClass = "public"
)

// RouteRule binds a path prefix to a class. Prefixes match on segment
// boundaries: "/admin" covers "/admin" and "/admin/...", never "/administrasi".
type RouteRule struct {
	Prefix string
	Class  RouteClass
}

// RouteTable is the single source of truth for navigational access policy.
// Rules are evaluated in order; the first match governs. Paths under an
// exempt prefix bypass the table entirely (API routes carry their own auth,
// static assets carry none).
type RouteTable struct {
	Exempt []string
	Rules  []RouteRule

	LoginPath string
	UserHome  string
	AdminHome string
}

// DefaultRouteTable returns the canonical policy table. The original system
// shipped two divergent copies of this list; this table is the deliberate
// reconciliation (see DESIGN.md) rather than a silent merge.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		Exempt: []string{"/api", "/auth", "/static", "/assets", "/healthz"},
		Rules: []RouteRule{
			{Prefix: "/login", Class: RouteRedirectAway},
			{Prefix: "/register", Class: RouteRedirectAway},
			{Prefix: "/", Class: RouteRedirectAway}, // marketing landing, exact "/" only
			{Prefix: "/admin", Class: RouteAdminOnly},
			{Prefix: "/dasbor", Class: RouteUserOnly},
			{Prefix: "/profil", Class: RouteUserOnly},
		},
		LoginPath: "/login",
		UserHome:  "/dasbor",
		AdminHome: "/admin/dashboard",
	}
}

// Decision is the outcome of classifying a request: allow, or redirect.
type Decision struct {
	// Redirect is the target path; empty means allow.
	Redirect string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Redirect == "" }

// IsExempt reports whether the path bypasses the navigation policy.
func (t RouteTable) IsExempt(path string) bool {
	for _, prefix := range t.Exempt {
		if matchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Decide classifies the path against the table. It is a pure function of
// (path, claims): claims == nil means anonymous, which by construction is
// also how an undecodable token presents.
func (t RouteTable) Decide(path string, claims *domainauth.Claims) Decision {
	for _, rule := range t.Rules {
		if !matchesPrefix(path, rule.Prefix) {
			continue
		}
		return t.apply(rule.Class, claims)
	}
	return Decision{}
}

func (t RouteTable) apply(class RouteClass, claims *domainauth.Claims) Decision {
	switch class {
	case RouteRedirectAway:
		if claims != nil {
			return Decision{Redirect: t.roleHome(claims.Role)}
		}
		return Decision{}

	case RouteAdminOnly:
		if claims == nil {
			return Decision{Redirect: t.LoginPath}
		}
		if claims.Role != domainauth.RoleAdmin {
			// Silent downgrade to the user dashboard, not an error page.
			return Decision{Redirect: t.UserHome}
		}
		return Decision{}

	case RouteUserOnly:
		if claims == nil {
			return Decision{Redirect: t.LoginPath}
		}
		if claims.Role == domainauth.RoleAdmin {
			return Decision{Redirect: t.AdminHome}
		}
		return Decision{}

	default:
		return Decision{}
	}
}

func (t RouteTable) roleHome(role domainauth.Role) string {
	if role == domainauth.RoleAdmin {
		return t.AdminHome
	}
	return t.UserHome
}

// matchesPrefix matches on segment boundaries, so "/" matches only "/" itself.
func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
