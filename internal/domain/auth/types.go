package auth

// Package auth contains domain-level types for identities and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strconv"
	"time"
)

// Role represents an application's authorization role.
// Kept in string form for easy persistence and token claims.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Identity is the canonical user record as stored in the identity store.
// PasswordHash is nil for accounts provisioned through OAuth; such accounts
// can only ever authenticate through OAuth.
type Identity struct {
	ID               int64      `json:"id"                           db:"id"`
	Email            string     `json:"email"                       db:"email"`
	Name             string     `json:"name"                        db:"name"`
	AvatarURL        *string    `json:"avatar_url,omitempty"        db:"avatar_url"`
	PasswordHash     *string    `json:"-"                           db:"password_hash"`
	Role             Role       `json:"role"                        db:"role"`
	StudentProfileID *int64     `json:"student_profile_id,omitempty" db:"student_profile_id"`
	AdminProfileID   *int64     `json:"admin_profile_id,omitempty"  db:"admin_profile_id"`
	CreatedAt        time.Time  `json:"created_at"                  db:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"        db:"updated_at"`
}

// HasPassword reports whether the identity has a local credential.
func (i Identity) HasPassword() bool {
	return i.PasswordHash != nil && *i.PasswordHash != ""
}

// ProfileID returns the profile row id matching the identity's role.
// Exactly one of the two foreign keys is populated; the role decides which.
func (i Identity) ProfileID() *int64 {
	if i.Role == RoleAdmin {
		return i.AdminProfileID
	}
	return i.StudentProfileID
}

// Claims is the decoded payload of a session token: who, their role, and the
// profile row owned by that role. A single ProfileID keyed by Role replaces
// the pair of optional role-specific fields so that a student with an admin
// profile id (or both at once) cannot be represented.
type Claims struct {
	Subject   string
	Role      Role
	ProfileID *int64

	// IssuedAt is set by the token codec on decode and drives refresh
	// decisions. It is not part of identity equality.
	IssuedAt time.Time
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// ClaimsFor projects an identity into session claims. The projection is taken
// at issuance time; it goes stale if the identity changes until the next
// refresh cycle re-derives it.
func ClaimsFor(identity Identity) Claims {
	return Claims{
		Subject:   strconv.FormatInt(identity.ID, 10),
		Role:      identity.Role,
		ProfileID: identity.ProfileID(),
	}
}
