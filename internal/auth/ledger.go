package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"

	"github.com/video-stream/shelf/internal/db/models"
	"github.com/video-stream/shelf/internal/metrics"
)

// SessionLifetime is the absolute lifetime of an issued session.
const SessionLifetime = 7 * 24 * time.Hour

// Identity is what a valid session resolves to.
type Identity struct {
	AccountID    int64  `json:"id"`
	Username     string `json:"username"`
	IsPrivileged bool   `json:"is_privileged"`
	SessionID    string `json:"-"`
}

// SessionStore persists session records.
type SessionStore interface {
	CreateSession(ctx context.Context, rec *models.SessionRecord) error
	// GetSession returns ErrNotFound when no row has the identifier.
	GetSession(ctx context.Context, sessionID string) (*models.SessionRecord, error)
	// DeleteSession succeeds whether or not the row exists.
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now int64) (int64, error)
}

// SessionLedger issues, validates and revokes session tokens.
// A token is "<session id>.<hex hmac>"; the MAC covers the stored account id
// and expiry, so the row is the only state needed to check it.
type SessionLedger struct {
	store    SessionStore
	signer   *signer
	lifetime time.Duration
	nowFunc  func() time.Time
}

// NewSessionLedger returns a ledger signing with secret. Changing the secret
// invalidates every outstanding token.
func NewSessionLedger(store SessionStore, secret []byte) (*SessionLedger, error) {
	if store == nil {
		return nil, oops.Code("AUTH_STORE_MISSING").Errorf("session store is required")
	}
	s, err := newSigner(secret)
	if err != nil {
		return nil, err
	}
	return &SessionLedger{
		store:    store,
		signer:   s,
		lifetime: SessionLifetime,
		nowFunc:  time.Now,
	}, nil
}

// Issue creates a session for the account and returns its token.
func (l *SessionLedger) Issue(ctx context.Context, accountID int64, username string, privileged bool) (string, error) {
	sessionID := uuid.NewString()
	expiresAt := l.nowFunc().Add(l.lifetime).Unix()

	sig, err := l.signer.sign(sessionID, accountID, expiresAt)
	if err != nil {
		return "", err
	}

	rec := &models.SessionRecord{
		SessionID:    sessionID,
		AccountID:    accountID,
		Username:     username,
		IsPrivileged: privileged,
		ExpiresAt:    expiresAt,
	}
	if err := l.store.CreateSession(ctx, rec); err != nil {
		return "", oops.Code("SESSION_ISSUE_FAILED").
			With("account_id", accountID).
			Wrap(err)
	}

	log.Ctx(ctx).Info().Str("username", username).Msg("session created")
	return sessionID + "." + sig, nil
}

// SplitToken returns the identifier and signature halves of a token.
func SplitToken(token string) (sessionID, sig string, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Validate resolves a token to an identity. Malformed, forged, expired and
// revoked tokens all yield (nil, nil); only store failures return an error.
func (l *SessionLedger) Validate(ctx context.Context, token string) (*Identity, error) {
	id, err := l.validate(ctx, token)
	switch {
	case err != nil:
		metrics.SessionValidations.WithLabelValues("error").Inc()
	case id == nil:
		metrics.SessionValidations.WithLabelValues("anonymous").Inc()
	default:
		metrics.SessionValidations.WithLabelValues("valid").Inc()
	}
	return id, err
}

func (l *SessionLedger) validate(ctx context.Context, token string) (*Identity, error) {
	sessionID, sig, ok := SplitToken(token)
	if !ok {
		return nil, nil
	}

	rec, err := l.store.GetSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_LOOKUP_FAILED").Wrap(err)
	}

	if l.nowFunc().Unix() > rec.ExpiresAt {
		if err := l.store.DeleteSession(ctx, sessionID); err != nil {
			return nil, oops.Code("SESSION_EVICT_FAILED").Wrap(err)
		}
		return nil, nil
	}

	// Only the stored account id and expiry feed the MAC.
	if !l.signer.verify(sig, rec.SessionID, rec.AccountID, rec.ExpiresAt) {
		return nil, nil
	}

	return &Identity{
		AccountID:    rec.AccountID,
		Username:     rec.Username,
		IsPrivileged: rec.IsPrivileged,
		SessionID:    rec.SessionID,
	}, nil
}

// Revoke deletes the session. Unknown identifiers are not an error.
func (l *SessionLedger) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := l.store.DeleteSession(ctx, sessionID); err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").Wrap(err)
	}
	return nil
}

// PurgeExpired removes every session whose expiry has passed.
func (l *SessionLedger) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := l.store.DeleteExpiredSessions(ctx, l.nowFunc().Unix())
	if err != nil {
		return 0, oops.Code("SESSION_PURGE_FAILED").Wrap(err)
	}
	return n, nil
}
