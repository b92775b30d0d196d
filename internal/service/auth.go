package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

// Sign-in failure taxonomy. These never escape the HTTP entry points raw:
// handlers recover them into user-displayable messages via SignInMessage.
var (
	// ErrAccountNotFound means no identity matches the email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountHasNoPassword means the account was provisioned via OAuth and
	// has no local credential. It is distinct from a wrong password so the
	// user can be pointed at the OAuth flow instead.
	ErrAccountHasNoPassword = errors.New("account has no password")
	// ErrInvalidCredentials means the password comparison failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTooManyAttempts means the failure budget for the account is spent.
	ErrTooManyAttempts = errors.New("too many sign-in attempts")
	// ErrProvisioning means OAuth auto-provisioning failed even after the
	// conflict-recovery re-query. Sign-in is denied outright.
	ErrProvisioning = errors.New("oauth provisioning failed")
)

// SignInMessage maps a sign-in failure to the message shown to the user.
func SignInMessage(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "Email ini tidak terdaftar."
	case errors.Is(err, ErrInvalidCredentials):
		return "Password yang Anda masukkan salah."
	case errors.Is(err, ErrAccountHasNoPassword):
		return "Akun ini terdaftar via Google. Silakan login pakai Google."
	case errors.Is(err, ErrTooManyAttempts):
		return "Terlalu banyak percobaan login. Coba lagi beberapa menit lagi."
	default:
		return "Terjadi kesalahan. Silakan coba lagi."
	}
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Store    ports.IdentityStore
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenCodec
	Throttle ports.LoginThrottle // optional; nil disables throttling
	Logger   *slog.Logger
}

// AuthService orchestrates credential verification, OAuth linking, and
// session-token issuance. It holds no per-request state; all state lives in
// the identity store or the client-held token.
type AuthService struct {
	store    ports.IdentityStore
	hasher   ports.PasswordHasher
	tokens   ports.TokenCodec
	throttle ports.LoginThrottle
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:    opts.Store,
		hasher:   opts.Hasher,
		tokens:   opts.Tokens,
		throttle: opts.Throttle,
		logger:   logger,
	}
}

// Session is the result of any successful sign-in path.
type Session struct {
	Token    string
	Claims   domainauth.Claims
	Identity domainauth.Identity
}

// VerifyCredentials checks an email/password pair against the stored
// credential. Read-only; on success it returns the full identity for claim
// construction.
func (s *AuthService) VerifyCredentials(
	ctx context.Context,
	email, password string,
) (*domainauth.Identity, error) {
	identity, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}

	if !identity.HasPassword() {
		return nil, ErrAccountHasNoPassword
	}
	if verifyErr := s.hasher.Verify(*identity.PasswordHash, password); verifyErr != nil {
		return nil, ErrInvalidCredentials
	}
	return identity, nil
}

// SignIn verifies credentials and issues a session token. Failed attempts
// count against the account's throttle budget; successes reset it.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if allowed := s.attemptAllowed(ctx, email); !allowed {
		return nil, ErrTooManyAttempts
	}

	identity, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.noteFailure(ctx, email, err)
		return nil, err
	}

	s.resetThrottle(ctx, email)
	return s.issueFor(*identity)
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Validate checks the registration fields.
func (in *RegisterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.ValidationField("name", "Nama wajib diisi.")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.ValidationField("email", "Email tidak valid.")
	}
	if len(in.Password) < 8 {
		return apperrors.ValidationField("password", "Password minimal 8 karakter.")
	}
	return nil
}

// Register creates a new local-credential identity and signs it in.
// A duplicate email surfaces as a conflict error for the handler to render.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity, err := s.store.CreateFromRegistration(ctx, ports.RegistrationInput{
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return s.issueFor(*identity)
}

// OAuthSignIn links or provisions an identity for the provider assertion and
// issues a session for it.
func (s *AuthService) OAuthSignIn(ctx context.Context, profile ports.OAuthProfile) (*Session, error) {
	identity, err := s.linkOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.issueFor(*identity)
}

// linkOrCreate resolves the provider assertion to a local identity:
// an existing identity is reused untouched; a miss provisions a student
// account with no local credential. A uniqueness conflict on create means a
// concurrent first login won the race, so the identity is re-queried once;
// if it still cannot be found the sign-in fails closed.
func (s *AuthService) linkOrCreate(
	ctx context.Context,
	profile ports.OAuthProfile,
) (*domainauth.Identity, error) {
	if strings.TrimSpace(profile.Email) == "" {
		return nil, fmt.Errorf("%w: provider assertion missing email", ErrProvisioning)
	}

	identity, err := s.store.FindByEmail(ctx, profile.Email)
	if err == nil {
		return identity, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("find identity: %w", err)
	}

	identity, err = s.store.CreateFromOAuth(ctx, profile)
	if err == nil {
		return identity, nil
	}
	if !apperrors.IsConflict(err) {
		return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	// Lost the first-login race; the unique index on email guarantees the
	// winner's row exists now.
	identity, err = s.store.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: recovery re-query: %v", ErrProvisioning, err)
	}
	return identity, nil
}

// DecodeToken decodes a session token. Any failure means "no session".
func (s *AuthService) DecodeToken(token string) (domainauth.Claims, error) {
	return s.tokens.Decode(token)
}

// Refresh re-derives claims from the latest identity state and re-signs them.
// This is idempotent re-issuance: role changes propagate on the next refresh
// cycle, and an identity that no longer exists downgrades to no session.
func (s *AuthService) Refresh(ctx context.Context, claims domainauth.Claims) (*Session, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	identity, err := s.store.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return s.issueFor(*identity)
}

// issueFor mints a token projecting the identity into session claims.
func (s *AuthService) issueFor(identity domainauth.Identity) (*Session, error) {
	claims := domainauth.ClaimsFor(identity)
	token, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &Session{Token: token, Claims: claims, Identity: identity}, nil
}

// attemptAllowed consults the throttle. Throttling is advisory: a throttle
// backend failure permits the attempt rather than locking everyone out.
func (s *AuthService) attemptAllowed(ctx context.Context, email string) bool {
	if s.throttle == nil {
		return true
	}
	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "login throttle check failed", "error", err)
		return true
	}
	return allowed
}

func (s *AuthService) noteFailure(ctx context.Context, email string, cause error) {
	if s.throttle == nil {
		return
	}
	// Only credential failures consume budget; infrastructure errors don't.
	if !errors.Is(cause, ErrAccountNotFound) &&
		!errors.Is(cause, ErrInvalidCredentials) &&
		!errors.Is(cause, ErrAccountHasNoPassword) {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "record login failure failed", "error", err)
	}
}

func (s *AuthService) resetThrottle(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "reset login throttle failed", "error", err)
	}
}
