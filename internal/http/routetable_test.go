package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
)

func studentClaims() *domainauth.Claims {
	profileID := int64(7)
	return &domainauth.Claims{Subject: "42", Role: domainauth.RoleStudent, ProfileID: &profileID}
}

func adminClaims() *domainauth.Claims {
	profileID := int64(3)
	return &domainauth.Claims{Subject: "1", Role: domainauth.RoleAdmin, ProfileID: &profileID}
}

func TestRouteTable_Decide(t *testing.T) {
	table := DefaultRouteTable()

	tests := []struct {
		name         string
		path         string
		claims       *domainauth.Claims
		wantRedirect string
	}{
		// Anonymous visitors.
		{"anon landing", "/", nil, ""},
		{"anon login", "/login", nil, ""},
		{"anon register", "/register", nil, ""},
		{"anon admin area", "/admin/dashboard", nil, "/login"},
		{"anon user dashboard", "/dasbor", nil, "/login"},
		{"anon profile", "/profil/keamanan", nil, "/login"},
		{"anon public page", "/kursus/golang-dasar", nil, ""},

		// Students.
		{"student landing", "/", studentClaims(), "/dasbor"},
		{"student login", "/login", studentClaims(), "/dasbor"},
		{"student register", "/register", studentClaims(), "/dasbor"},
		{"student own dashboard", "/dasbor", studentClaims(), ""},
		{"student profile", "/profil", studentClaims(), ""},
		{"student admin area", "/admin/dashboard", studentClaims(), "/dasbor"},
		{"student public page", "/kursus/golang-dasar", studentClaims(), ""},

		// Admins.
		{"admin landing", "/", adminClaims(), "/admin/dashboard"},
		{"admin login", "/login", adminClaims(), "/admin/dashboard"},
		{"admin own area", "/admin/dashboard", adminClaims(), ""},
		{"admin user dashboard", "/dasbor", adminClaims(), "/admin/dashboard"},
		{"admin profile", "/profil", adminClaims(), "/admin/dashboard"},
		{"admin public page", "/kursus/golang-dasar", adminClaims(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := table.Decide(tt.path, tt.claims)
			assert.Equal(t, tt.wantRedirect, decision.Redirect)
			assert.Equal(t, tt.wantRedirect == "", decision.Allowed())
		})
	}
}

// Prefixes match whole path segments: a rule for /admin must not capture
// look-alike paths, and the "/" rule is exact.
func TestRouteTable_SegmentBoundaries(t *testing.T) {
	table := DefaultRouteTable()

	assert.Equal(t, "/login", table.Decide("/admin", nil).Redirect)
	assert.Empty(t, table.Decide("/administrasi", nil).Redirect)
	assert.Empty(t, table.Decide("/loginhelp", studentClaims()).Redirect)
	assert.Empty(t, table.Decide("/dasbor-lama", adminClaims()).Redirect)
}

func TestRouteTable_IsExempt(t *testing.T) {
	table := DefaultRouteTable()

	assert.True(t, table.IsExempt("/api/auth/login"))
	assert.True(t, table.IsExempt("/auth/google/callback"))
	assert.True(t, table.IsExempt("/static/app.css"))
	assert.True(t, table.IsExempt("/healthz"))
	assert.False(t, table.IsExempt("/apiary"))
	assert.False(t, table.IsExempt("/dasbor"))
}
