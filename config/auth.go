package config

import "time"

// GoogleOAuthConfig contains the Google OIDC client configuration.
type GoogleOAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/google/callback"`
	IssuerURL    string `env:"ISSUER_URL"   envDefault:"https://accounts.google.com"`
}

// Enabled reports whether the Google flow has enough configuration to run.
func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// ThrottleConfig controls the failed-login throttle.
type ThrottleConfig struct {
	// MaxFailures is the number of failed attempts before sign-in is paused.
	MaxFailures int `env:"MAX_FAILURES" envDefault:"10"`

	// Window is how long the failure count lives.
	Window time.Duration `env:"WINDOW" envDefault:"15m"`

	// Disabled turns the throttle off entirely (useful in tests).
	Disabled bool `env:"DISABLED" envDefault:"false"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// TokenSecret signs session tokens. Required.
	TokenSecret string `env:"AUTH_TOKEN_SECRET,required"`

	// TokenIssuer is the iss claim on session tokens.
	TokenIssuer string `env:"AUTH_TOKEN_ISSUER" envDefault:"innoventum"`

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`

	// RefreshAfter is the token age past which the navigation guard re-issues
	// the session from the latest identity state. Zero disables refresh.
	RefreshAfter time.Duration `env:"AUTH_REFRESH_AFTER" envDefault:"12h"`

	// BcryptCost is the work factor for password hashing. Zero uses the
	// library default.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"0"`

	// Google OAuth configuration. The Google sign-in flow is disabled when
	// the client credentials are absent.
	Google GoogleOAuthConfig `envPrefix:"GOOGLE_"`

	// Throttle configuration for failed sign-ins.
	Throttle ThrottleConfig `envPrefix:"AUTH_THROTTLE_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.TokenTTL <= 0 {
		a.TokenTTL = 24 * time.Hour
	}
	if a.RefreshAfter < 0 {
		a.RefreshAfter = 0
	}
	// Refresh past the full TTL never fires; clamp to half the lifetime.
	if a.RefreshAfter > a.TokenTTL {
		a.RefreshAfter = a.TokenTTL / 2
	}
	if a.Throttle.MaxFailures < 1 {
		a.Throttle.MaxFailures = 1
	}
	if a.Throttle.Window <= 0 {
		a.Throttle.Window = 15 * time.Minute
	}
}
