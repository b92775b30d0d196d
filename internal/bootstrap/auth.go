package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/syaquiii/innoventum-sub001/config"
	"github.com/syaquiii/innoventum-sub001/internal/adapters/google"
	"github.com/syaquiii/innoventum-sub001/internal/adapters/password"
	"github.com/syaquiii/innoventum-sub001/internal/adapters/redisx"
	"github.com/syaquiii/innoventum-sub001/internal/adapters/token"
	"github.com/syaquiii/innoventum-sub001/internal/data"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
	"github.com/syaquiii/innoventum-sub001/internal/service"
)

// AuthConfig contains configuration for building the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService wires the identity store, password hasher, token codec,
// and login throttle into an AuthService.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	codec, err := token.NewCodec(token.Config{
		Secret: cfg.Auth.TokenSecret,
		Issuer: cfg.Auth.TokenIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build token codec: %w", err)
	}

	var throttle ports.LoginThrottle
	if cfg.RedisClient != nil && !cfg.Auth.Throttle.Disabled {
		throttle = redisx.NewLoginThrottle(cfg.RedisClient, redisx.ThrottleConfig{
			MaxFailures: cfg.Auth.Throttle.MaxFailures,
			Window:      cfg.Auth.Throttle.Window,
		})
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Store:    data.NewUserRepo(cfg.DB),
		Hasher:   password.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:   codec,
		Throttle: throttle,
		Logger:   cfg.Logger,
	}), nil
}

// BuildOAuthProvider creates the Google OIDC provider, or nil when the
// client credentials are not configured.
func BuildOAuthProvider(ctx context.Context, cfg AuthConfig) (ports.OAuthExchanger, error) {
	g := cfg.Auth.Google
	if !g.Enabled() {
		if cfg.Logger != nil {
			cfg.Logger.Warn("google oauth not configured; google sign-in disabled")
		}
		return nil, nil
	}

	prov, err := google.NewProvider(ctx, google.ProviderConfig{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		IssuerURL:    g.IssuerURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build google provider: %w", err)
	}
	return prov, nil
}
