package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	domainauth "github.com/syaquiii/innoventum-sub001/internal/domain/auth"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
	"github.com/syaquiii/innoventum-sub001/internal/data/pgxutil"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

// userColumns is the canonical select list for the users table.
const userColumns = `id, email, name, avatar_url, password_hash, role, student_profile_id, admin_profile_id, created_at, updated_at`

// UserRepo provides database operations for identities. Email uniqueness is
// enforced by a unique index; unique violations surface as conflict errors so
// the service layer can run its recovery re-query.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.IdentityStore = (*UserRepo)(nil)

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// FindByEmail retrieves an identity by email. Emails are matched as stored
// (case-sensitive).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domainauth.Identity, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.Validation("Email is required.")
	}
	return r.getByQuery(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
}

// FindByID retrieves an identity by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domainauth.Identity, error) {
	return r.getByQuery(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
}

// CreateFromRegistration inserts a new identity with a local credential.
// The student profile row is created in the same transaction so the
// role/profile invariant holds from the first read.
func (r *UserRepo) CreateFromRegistration(
	ctx context.Context,
	in ports.RegistrationInput,
) (*domainauth.Identity, error) {
	if in.PasswordHash == "" {
		return nil, apperrors.Validation("Password hash is required.")
	}
	return r.insertStudent(ctx, studentInsert{
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: &in.PasswordHash,
	})
}

// CreateFromOAuth inserts a new OAuth-only identity (no local credential).
// The only role this path ever assigns is student.
func (r *UserRepo) CreateFromOAuth(
	ctx context.Context,
	profile ports.OAuthProfile,
) (*domainauth.Identity, error) {
	ins := studentInsert{
		Email: strings.TrimSpace(profile.Email),
		Name:  strings.TrimSpace(profile.Name),
	}
	if profile.AvatarURL != "" {
		ins.AvatarURL = &profile.AvatarURL
	}
	return r.insertStudent(ctx, ins)
}

// studentInsert groups the fields shared by both identity creation paths.
type studentInsert struct {
	Email        string
	Name         string
	AvatarURL    *string
	PasswordHash *string
}

func (r *UserRepo) insertStudent(ctx context.Context, in studentInsert) (*domainauth.Identity, error) {
	if in.Email == "" {
		return nil, apperrors.Validation("Email is required.")
	}
	if in.Name == "" {
		return nil, apperrors.Validation("Name is required.")
	}

	createdAt := r.timeProvider.Now().UTC()
	var out domainauth.Identity
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var profileID int64
		if scanErr := tx.QueryRow(ctx, `
			INSERT INTO student_profiles (created_at) VALUES ($1) RETURNING id
		`, createdAt).Scan(&profileID); scanErr != nil {
			return scanErr
		}

		rows, queryErr := tx.Query(ctx, `
			INSERT INTO users (
				email, name, avatar_url, password_hash, role, student_profile_id, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7
			) RETURNING `+userColumns,
			in.Email,
			in.Name,
			in.AvatarURL,
			in.PasswordHash,
			domainauth.RoleStudent,
			profileID,
			createdAt,
		)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Identity])
		return collectErr
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

func (r *UserRepo) getByQuery(ctx context.Context, query string, arg any) (*domainauth.Identity, error) {
	var out domainauth.Identity
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, arg)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Identity])
		return collectErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Identity not found")
		}
		return nil, fmt.Errorf("failed to get identity: %w", apperrors.MapDBError(err))
	}
	return &out, nil
}
