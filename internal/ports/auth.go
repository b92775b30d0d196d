package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
)

// RegistrationInput carries the fields written by the registration flow.
// PasswordHash is already hashed; the store never sees plaintext.
type RegistrationInput struct {
	Email        string
	Name         string
	PasswordHash string
}

// OAuthProfile is the provider identity assertion delivered on callback.
type OAuthProfile struct {
	Email     string
	Name      string
	AvatarURL string
}

// IdentityStore is the boundary to the user-record store. FindByEmail and
// FindByID return a not-found error (errors.IsNotFound) on a miss. The create
// methods surface unique-email violations as conflict errors
// (errors.IsConflict) so callers can run the idempotent recovery re-query.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*domainauth.Identity, error)
	FindByID(ctx context.Context, id int64) (*domainauth.Identity, error)
	CreateFromRegistration(ctx context.Context, in RegistrationInput) (*domainauth.Identity, error)
	CreateFromOAuth(ctx context.Context, profile OAuthProfile) (*domainauth.Identity, error)
}

// PasswordHasher hashes and verifies local credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns nil when the plaintext matches the hash.
	Verify(hashedPassword, password string) error
}

// TokenCodec mints and decodes signed, stateless session tokens.
// Decode fails closed: any signature, structure, or expiry problem yields an
// error and never a partial claims value.
type TokenCodec interface {
	Issue(claims domainauth.Claims) (string, error)
	Decode(token string) (domainauth.Claims, error)
}

// OAuthExchanger initiates and completes an OAuth/OIDC flow against a
// third-party provider, returning the provider's identity assertion.
type OAuthExchanger interface {
	// Begin returns the provider auth URL plus an opaque state and nonce to
	// round-trip through the client.
	Begin(ctx context.Context) (authURL, state, nonce string, err error)
	// Exchange verifies the callback code and nonce and returns the asserted
	// profile.
	Exchange(ctx context.Context, code, nonce string) (OAuthProfile, error)
}

// LoginThrottle limits failed credential attempts per account key.
// A nil implementation is valid; throttling is advisory.
type LoginThrottle interface {
	// Allow reports whether another attempt is permitted for the key.
	Allow(ctx context.Context, key string) (bool, error)
	// RecordFailure notes a failed attempt for the key.
	RecordFailure(ctx context.Context, key string) error
	// Reset clears the failure budget for the key after a success.
	Reset(ctx context.Context, key string) error
}
