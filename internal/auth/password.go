// Package auth issues and validates session tokens, verifies account
// passwords and fronts the watch-history ledger for the web layer.
package auth

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// CredentialVerifier hashes and checks account passwords with bcrypt.
type CredentialVerifier struct {
	cost int
}

// NewCredentialVerifier returns a verifier using the given bcrypt cost.
// Out-of-range costs fall back to bcrypt.DefaultCost.
func NewCredentialVerifier(cost int) *CredentialVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialVerifier{cost: cost}
}

// Hash returns a salted bcrypt digest of password.
func (v *CredentialVerifier) Hash(password string) (string, error) {
	if password == "" {
		return "", oops.Code("AUTH_EMPTY_PASSWORD").
			Wrap(fmt.Errorf("%w: password cannot be empty", ErrValidation))
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", oops.Code("AUTH_PASSWORD_TOO_LONG").
			With("length", len(password)).
			Wrap(fmt.Errorf("%w: password exceeds %d bytes", ErrValidation, MaxPasswordBytes))
	}
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("cost", v.cost).
			Wrap(fmt.Errorf("%w: %w", ErrInternal, err))
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. A malformed digest is a mismatch.
func (v *CredentialVerifier) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
