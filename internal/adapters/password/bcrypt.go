package password

// Package password provides the bcrypt implementation of ports.PasswordHasher.

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

// BcryptHasher implements ports.PasswordHasher using bcrypt. The comparison is
// constant-time and each hash carries its own salt.
type BcryptHasher struct {
	Cost int
}

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a BcryptHasher. Cost defaults to bcrypt.DefaultCost
// when cost <= 0.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash generates a bcrypt hash for the given password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

// Verify compares a bcrypt hash with its possible plaintext equivalent.
// Returns nil on match, bcrypt.ErrMismatchedHashAndPassword otherwise.
func (h *BcryptHasher) Verify(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
