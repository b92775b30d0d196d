package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
	mocks "github.com/syaquiii/innoventum-sub001/internal/mocks/auth"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

func newTestService(store *mocks.MemoryIdentityStore, throttle ports.LoginThrottle) *AuthService {
	return NewAuthService(AuthServiceOptions{
		Store:    store,
		Hasher:   mocks.PlainHasher{},
		Tokens:   mocks.NewStubCodec(),
		Throttle: throttle,
	})
}

func seedStudent(store *mocks.MemoryIdentityStore, email, password string) domainauth.Identity {
	hash := "plain:" + password
	profileID := int64(101)
	return store.Seed(domainauth.Identity{
		Email:            email,
		Name:             "Test Student",
		PasswordHash:     &hash,
		Role:             domainauth.RoleStudent,
		StudentProfileID: &profileID,
	})
}

func TestSignIn_Success(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	identity := seedStudent(store, "budi@example.com", "rahasia-123")
	svc := newTestService(store, nil)

	sess, err := svc.SignIn(context.Background(), "budi@example.com", "rahasia-123")

	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "1", sess.Claims.Subject)
	assert.Equal(t, domainauth.RoleStudent, sess.Claims.Role)
	require.NotNil(t, sess.Claims.ProfileID)
	assert.Equal(t, *identity.StudentProfileID, *sess.Claims.ProfileID)
}

func TestSignIn_TrimsEmail(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	seedStudent(store, "budi@example.com", "rahasia-123")
	svc := newTestService(store, nil)

	sess, err := svc.SignIn(context.Background(), "  budi@example.com  ", "rahasia-123")

	require.NoError(t, err)
	assert.NotNil(t, sess)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	svc := newTestService(store, nil)

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "whatever-123")

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestSignIn_WrongPassword(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	seedStudent(store, "budi@example.com", "rahasia-123")
	svc := newTestService(store, nil)

	_, err := svc.SignIn(context.Background(), "budi@example.com", "salah-total")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// An account provisioned through OAuth has no local credential. Signing in
// with any password must report the OAuth situation, never a wrong password.
func TestSignIn_OAuthOnlyAccount(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	profileID := int64(7)
	store.Seed(domainauth.Identity{
		Email:            "google.user@example.com",
		Name:             "Google User",
		PasswordHash:     nil,
		Role:             domainauth.RoleStudent,
		StudentProfileID: &profileID,
	})
	svc := newTestService(store, nil)

	_, err := svc.SignIn(context.Background(), "google.user@example.com", "anything-goes")

	assert.ErrorIs(t, err, ErrAccountHasNoPassword)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_EmptyInputs(t *testing.T) {
	svc := newTestService(mocks.NewMemoryIdentityStore(), nil)

	_, err := svc.SignIn(context.Background(), "", "password-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), "budi@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_ThrottleExhausted(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	seedStudent(store, "budi@example.com", "rahasia-123")
	throttle := mocks.NewCountingThrottle(2)
	svc := newTestService(store, throttle)

	ctx := context.Background()
	for range 2 {
		_, err := svc.SignIn(ctx, "budi@example.com", "salah")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Budget spent: even the correct password is rejected now.
	_, err := svc.SignIn(ctx, "budi@example.com", "rahasia-123")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestSignIn_SuccessResetsThrottle(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	seedStudent(store, "budi@example.com", "rahasia-123")
	throttle := mocks.NewCountingThrottle(3)
	svc := newTestService(store, throttle)

	ctx := context.Background()
	_, _ = svc.SignIn(ctx, "budi@example.com", "salah")
	assert.Equal(t, 1, throttle.Failures("budi@example.com"))

	_, err := svc.SignIn(ctx, "budi@example.com", "rahasia-123")
	require.NoError(t, err)
	assert.Equal(t, 0, throttle.Failures("budi@example.com"))
}

// Throttling is advisory: a broken throttle backend must not lock users out.
func TestSignIn_ThrottleBackendFailureAllowsAttempt(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	seedStudent(store, "budi@example.com", "rahasia-123")
	throttle := mocks.NewCountingThrottle(1)
	throttle.AllowErr = errors.New("redis down")
	svc := newTestService(store, throttle)

	sess, err := svc.SignIn(context.Background(), "budi@example.com", "rahasia-123")

	require.NoError(t, err)
	assert.NotNil(t, sess)
}

// Infrastructure failures never consume the throttle budget.
func TestSignIn_StoreFailureDoesNotConsumeBudget(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	store.FailFindByEmail = apperrors.Internal("connection reset")
	throttle := mocks.NewCountingThrottle(3)
	svc := newTestService(store, throttle)

	_, err := svc.SignIn(context.Background(), "budi@example.com", "rahasia-123")

	require.Error(t, err)
	assert.Equal(t, 0, throttle.Failures("budi@example.com"))
}

func TestSignInMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unknown email", ErrAccountNotFound, "Email ini tidak terdaftar."},
		{"wrong password", ErrInvalidCredentials, "Password yang Anda masukkan salah."},
		{
			"oauth-only account",
			ErrAccountHasNoPassword,
			"Akun ini terdaftar via Google. Silakan login pakai Google.",
		},
		{
			"throttled",
			ErrTooManyAttempts,
			"Terlalu banyak percobaan login. Coba lagi beberapa menit lagi.",
		},
		{"infrastructure", errors.New("boom"), "Terjadi kesalahan. Silakan coba lagi."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignInMessage(tt.err))
		})
	}
}

func TestRegister_Success(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	svc := newTestService(store, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Siti",
		Email:    "siti@example.com",
		Password: "panjang-sekali",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, domainauth.RoleStudent, sess.Identity.Role)
	assert.True(t, sess.Identity.HasPassword())

	// The fresh account can sign in with its credential.
	again, err := svc.SignIn(context.Background(), "siti@example.com", "panjang-sekali")
	require.NoError(t, err)
	assert.Equal(t, sess.Identity.ID, again.Identity.ID)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(mocks.NewMemoryIdentityStore(), nil)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "12345678"}, "name"},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "12345678"}, "email"},
		{"short password", RegisterInput{Name: "A", Email: "a@b.c", Password: "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	seedStudent(store, "siti@example.com", "whatever-12")
	svc := newTestService(store, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Siti",
		Email:    "siti@example.com",
		Password: "panjang-sekali",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestOAuthSignIn_ExistingIdentity(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	identity := seedStudent(store, "budi@example.com", "rahasia-123")
	svc := newTestService(store, nil)

	sess, err := svc.OAuthSignIn(context.Background(), ports.OAuthProfile{
		Email: "budi@example.com",
		Name:  "Budi From Google",
	})

	require.NoError(t, err)
	// The existing record is linked as-is, not overwritten.
	assert.Equal(t, identity.ID, sess.Identity.ID)
	assert.Equal(t, "Test Student", sess.Identity.Name)
	assert.True(t, sess.Identity.HasPassword())
}

func TestOAuthSignIn_ProvisionsNewStudent(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	svc := newTestService(store, nil)

	sess, err := svc.OAuthSignIn(context.Background(), ports.OAuthProfile{
		Email:     "new.user@example.com",
		Name:      "New User",
		AvatarURL: "https://lh3.example.com/a.png",
	})

	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleStudent, sess.Identity.Role)
	assert.False(t, sess.Identity.HasPassword())
	require.NotNil(t, sess.Identity.StudentProfileID)
	assert.Nil(t, sess.Identity.AdminProfileID)
}

// Losing the first-login race surfaces as a uniqueness conflict; the winner's
// row must be picked up by the recovery re-query.
func TestOAuthSignIn_ConflictRecoveryFindsWinner(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	winner := seedStudent(store, "racer@example.com", "whatever-12")
	// Initial lookup misses (insert not yet visible), create then conflicts,
	// and only the recovery re-query sees the winner's row.
	store.MissFindByEmailOnce = true
	store.CreateConflictOnce = true
	svc := newTestService(store, nil)

	sess, err := svc.OAuthSignIn(context.Background(), ports.OAuthProfile{
		Email: "racer@example.com",
		Name:  "Racer",
	})

	require.NoError(t, err)
	assert.Equal(t, winner.ID, sess.Identity.ID)
}

// A conflict whose recovery re-query still finds nothing denies the sign-in.
func TestOAuthSignIn_ConflictWithoutRowFailsClosed(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	store.CreateConflictOnce = true
	svc := newTestService(store, nil)

	_, err := svc.OAuthSignIn(context.Background(), ports.OAuthProfile{
		Email: "ghost@example.com",
		Name:  "Ghost",
	})

	assert.ErrorIs(t, err, ErrProvisioning)
}

func TestOAuthSignIn_MissingEmailFailsClosed(t *testing.T) {
	svc := newTestService(mocks.NewMemoryIdentityStore(), nil)

	_, err := svc.OAuthSignIn(context.Background(), ports.OAuthProfile{Name: "No Email"})

	assert.ErrorIs(t, err, ErrProvisioning)
}

func TestRefresh_ReflectsLatestIdentityState(t *testing.T) {
	store := mocks.NewMemoryIdentityStore()
	identity := seedStudent(store, "budi@example.com", "rahasia-123")
	svc := newTestService(store, nil)

	sess, err := svc.SignIn(context.Background(), "budi@example.com", "rahasia-123")
	require.NoError(t, err)

	// Promote the account; the next refresh must pick up the new role.
	adminProfileID := int64(55)
	identity.Role = domainauth.RoleAdmin
	identity.StudentProfileID = nil
	identity.AdminProfileID = &adminProfileID
	store.Seed(identity)

	refreshed, err := svc.Refresh(context.Background(), sess.Claims)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, refreshed.Claims.Role)
	require.NotNil(t, refreshed.Claims.ProfileID)
	assert.Equal(t, adminProfileID, *refreshed.Claims.ProfileID)
}

func TestRefresh_VanishedIdentity(t *testing.T) {
	svc := newTestService(mocks.NewMemoryIdentityStore(), nil)

	_, err := svc.Refresh(context.Background(), domainauth.Claims{
		Subject: "42",
		Role:    domainauth.RoleStudent,
	})

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRefresh_MalformedSubject(t *testing.T) {
	svc := newTestService(mocks.NewMemoryIdentityStore(), nil)

	_, err := svc.Refresh(context.Background(), domainauth.Claims{Subject: "not-a-number"})

	assert.ErrorIs(t, err, ErrAccountNotFound)
}
