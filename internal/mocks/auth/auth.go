package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityStore  = (*MemoryIdentityStore)(nil)
	_ ports.PasswordHasher = (*PlainHasher)(nil)
	_ ports.TokenCodec     = (*StubCodec)(nil)
	_ ports.OAuthExchanger = (*MockOAuthExchanger)(nil)
	_ ports.LoginThrottle  = (*CountingThrottle)(nil)
)

// MemoryIdentityStore is an in-memory ports.IdentityStore keyed by email.
// It enforces the unique-email constraint the same way the database does:
// a second create for the same email returns a conflict error.
type MemoryIdentityStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domainauth.Identity

	// CreateConflictOnce makes the next create return a conflict without
	// inserting, simulating a concurrent provisioning race losing the insert.
	CreateConflictOnce bool

	// FailFindByEmail, when set, is returned by FindByEmail verbatim.
	FailFindByEmail error

	// MissFindByEmailOnce makes the next FindByEmail report not-found even if
	// the row exists, simulating a read racing ahead of a concurrent insert.
	MissFindByEmailOnce bool
}

// NewMemoryIdentityStore creates an empty store.
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{byID: map[int64]domainauth.Identity{}}
}

// Seed inserts an identity directly, assigning IDs as needed.
func (s *MemoryIdentityStore) Seed(identity domainauth.Identity) domainauth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity.ID == 0 {
		s.nextID++
		identity.ID = s.nextID
	} else if identity.ID > s.nextID {
		s.nextID = identity.ID
	}
	s.byID[identity.ID] = identity
	return identity
}

func (s *MemoryIdentityStore) FindByEmail(_ context.Context, email string) (*domainauth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFindByEmail != nil {
		return nil, s.FailFindByEmail
	}
	if s.MissFindByEmailOnce {
		s.MissFindByEmailOnce = false
		return nil, apperrors.NotFound(fmt.Sprintf("user with email %q not found", email))
	}
	for _, identity := range s.byID {
		if identity.Email == email {
			out := identity
			return &out, nil
		}
	}
	return nil, apperrors.NotFound(fmt.Sprintf("user with email %q not found", email))
}

func (s *MemoryIdentityStore) FindByID(_ context.Context, id int64) (*domainauth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("user %d not found", id))
	}
	out := identity
	return &out, nil
}

func (s *MemoryIdentityStore) CreateFromRegistration(
	_ context.Context,
	in ports.RegistrationInput,
) (*domainauth.Identity, error) {
	return s.insert(in.Email, in.Name, &in.PasswordHash, nil)
}

func (s *MemoryIdentityStore) CreateFromOAuth(
	_ context.Context,
	profile ports.OAuthProfile,
) (*domainauth.Identity, error) {
	var avatar *string
	if profile.AvatarURL != "" {
		a := profile.AvatarURL
		avatar = &a
	}
	return s.insert(profile.Email, profile.Name, nil, avatar)
}

func (s *MemoryIdentityStore) insert(
	email, name string,
	passwordHash, avatarURL *string,
) (*domainauth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateConflictOnce {
		s.CreateConflictOnce = false
		return nil, apperrors.Conflict("email already registered")
	}
	for _, existing := range s.byID {
		if existing.Email == email {
			return nil, apperrors.Conflict("email already registered")
		}
	}

	s.nextID++
	profileID := s.nextID
	identity := domainauth.Identity{
		ID:               s.nextID,
		Email:            email,
		Name:             name,
		AvatarURL:        avatarURL,
		PasswordHash:     passwordHash,
		Role:             domainauth.RoleStudent,
		StudentProfileID: &profileID,
	}
	s.byID[identity.ID] = identity
	out := identity
	return &out, nil
}

// PlainHasher stores passwords with a marker prefix instead of hashing.
// Fast and deterministic for tests.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (PlainHasher) Verify(hashedPassword, password string) error {
	if hashedPassword != "plain:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// StubCodec encodes claims into a readable pseudo-token and decodes tokens it
// produced. Unknown tokens fail, matching the fail-closed contract.
type StubCodec struct {
	mu     sync.Mutex
	issued map[string]domainauth.Claims

	// IssueErr, when set, is returned by Issue.
	IssueErr error
}

// NewStubCodec creates an empty codec.
func NewStubCodec() *StubCodec {
	return &StubCodec{issued: map[string]domainauth.Claims{}}
}

func (c *StubCodec) Issue(claims domainauth.Claims) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.IssueErr != nil {
		return "", c.IssueErr
	}
	token := fmt.Sprintf("stub-token-%s-%s-%d", claims.Subject, claims.Role, len(c.issued))
	c.issued[token] = claims
	return token, nil
}

func (c *StubCodec) Decode(token string) (domainauth.Claims, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	claims, ok := c.issued[token]
	if !ok {
		return domainauth.Claims{}, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// MockOAuthExchanger simulates a provider with deterministic state/nonce values.
type MockOAuthExchanger struct {
	BeginFunc    func(ctx context.Context) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, code, nonce string) (ports.OAuthProfile, error)

	AuthURL        string
	DefaultProfile ports.OAuthProfile

	callCount int
}

func (m *MockOAuthExchanger) Begin(ctx context.Context) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", m.callCount), fmt.Sprintf("nonce-%d", m.callCount), nil
}

func (m *MockOAuthExchanger) Exchange(ctx context.Context, code, nonce string) (ports.OAuthProfile, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code, nonce)
	}
	profile := m.DefaultProfile
	if profile.Email == "" {
		profile = ports.OAuthProfile{
			Email: "mock.user@example.com",
			Name:  "Mock User",
		}
	}
	return profile, nil
}

// CountingThrottle is an in-memory ports.LoginThrottle.
type CountingThrottle struct {
	mu       sync.Mutex
	failures map[string]int

	// MaxFailures before Allow reports false. Zero means unlimited.
	MaxFailures int

	// AllowErr, when set, is returned by Allow.
	AllowErr error
}

// NewCountingThrottle creates a throttle with the given budget.
func NewCountingThrottle(maxFailures int) *CountingThrottle {
	return &CountingThrottle{failures: map[string]int{}, MaxFailures: maxFailures}
}

func (t *CountingThrottle) Allow(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.AllowErr != nil {
		return false, t.AllowErr
	}
	if t.MaxFailures <= 0 {
		return true, nil
	}
	return t.failures[t.normalize(key)] < t.MaxFailures, nil
}

func (t *CountingThrottle) RecordFailure(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[t.normalize(key)]++
	return nil
}

func (t *CountingThrottle) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, t.normalize(key))
	return nil
}

// Failures returns the recorded failure count for a key.
func (t *CountingThrottle) Failures(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[t.normalize(key)]
}

func (t *CountingThrottle) normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
