package auth

import (
	"context"
	"fmt"
)

// Identity provider modes selected by configuration.
const (
	ModeCookie = "cookie"
	ModeLocal  = "local"
)

// IdentityProvider resolves the caller of a request from its session token.
// A nil identity with a nil error means the caller is anonymous.
type IdentityProvider interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
	// AllowsLogin reports whether login and logout are meaningful.
	AllowsLogin() bool
}

// CookieSession resolves identities from signed session tokens.
type CookieSession struct {
	ledger *SessionLedger
}

func NewCookieSession(ledger *SessionLedger) *CookieSession {
	return &CookieSession{ledger: ledger}
}

func (c *CookieSession) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	return c.ledger.Validate(ctx, token)
}

func (c *CookieSession) AllowsLogin() bool { return true }

// FixedLocalIdentity treats every request as the single local account.
type FixedLocalIdentity struct {
	identity Identity
}

func NewFixedLocalIdentity(id Identity) *FixedLocalIdentity {
	return &FixedLocalIdentity{identity: id}
}

func (f *FixedLocalIdentity) Resolve(context.Context, string) (*Identity, error) {
	id := f.identity
	return &id, nil
}

func (f *FixedLocalIdentity) AllowsLogin() bool { return false }

// NewIdentityProvider picks the provider for mode. The local identity is only
// consulted in ModeLocal.
func NewIdentityProvider(mode string, ledger *SessionLedger, local Identity) (IdentityProvider, error) {
	switch mode {
	case ModeCookie, "":
		return NewCookieSession(ledger), nil
	case ModeLocal:
		return NewFixedLocalIdentity(local), nil
	default:
		return nil, fmt.Errorf("%w: unknown auth mode %q", ErrValidation, mode)
	}
}
