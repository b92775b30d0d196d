package token

// Package token implements the session token codec on HS256 JWTs. Tokens are
// integrity-protected, not encrypted: claims are readable but not forgeable.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

// ErrInvalidToken is returned for any token that fails to decode, regardless
// of the underlying reason. Callers treat it identically to "no session".
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims is the wire shape of the session token. The role decides which
// of the two profile id fields is present; both set (or the wrong one set) is
// rejected on decode.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role             string `json:"role"`
	StudentProfileID *int64 `json:"spi,omitempty"`
	AdminProfileID   *int64 `json:"api,omitempty"`
}

// Codec signs and verifies session tokens with a server-held HMAC secret.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenCodec = (*Codec)(nil)

// Config controls token issuance.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string
	// Issuer is stamped into and required from every token.
	Issuer string
	// TTL is the token validity window. Defaults to 24h when zero.
	TTL time.Duration
	// Now overrides the clock (useful for tests).
	Now func() time.Time
}

// NewCodec constructs a Codec from Config.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "innoventum"
	}
	return &Codec{secret: []byte(cfg.Secret), issuer: issuer, ttl: ttl, now: now}, nil
}

// TTL returns the configured validity window.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue mints a signed token for the given claims.
func (c *Codec) Issue(claims domainauth.Claims) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("token: subject is required")
	}
	if !claims.Role.Valid() {
		return "", fmt.Errorf("token: invalid role %q", claims.Role)
	}

	now := c.now()
	wire := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
		Role: string(claims.Role),
	}
	switch claims.Role {
	case domainauth.RoleAdmin:
		wire.AdminProfileID = claims.ProfileID
	case domainauth.RoleStudent:
		wire.StudentProfileID = claims.ProfileID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token and returns its claims. Every failure mode
// (signature mismatch, expiry, malformed structure, wrong algorithm, unknown
// role) collapses into ErrInvalidToken so callers cannot distinguish — and
// cannot leak — why a token was rejected.
func (c *Codec) Decode(token string) (domainauth.Claims, error) {
	var wire sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &wire, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return domainauth.Claims{}, ErrInvalidToken
	}

	role := domainauth.Role(wire.Role)
	if !role.Valid() || wire.Subject == "" {
		return domainauth.Claims{}, ErrInvalidToken
	}

	claims := domainauth.Claims{Subject: wire.Subject, Role: role}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	switch role {
	case domainauth.RoleAdmin:
		if wire.StudentProfileID != nil {
			return domainauth.Claims{}, ErrInvalidToken
		}
		claims.ProfileID = wire.AdminProfileID
	case domainauth.RoleStudent:
		if wire.AdminProfileID != nil {
			return domainauth.Claims{}, ErrInvalidToken
		}
		claims.ProfileID = wire.StudentProfileID
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
	}
	return c.secret, nil
}
