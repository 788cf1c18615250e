package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/oops"

	"github.com/video-stream/shelf/internal/db/models"
	"github.com/video-stream/shelf/internal/metrics"
)

// LocalUsername is the account used when the service runs in local mode.
const LocalUsername = "local"

// dummyHash is verified against when the username is unknown so that both
// failure paths cost one bcrypt comparison. It matches no password.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7ry3Uh1Q6u/IybVYuMYq1UO"

// AccountStore persists accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, username, passwordHash string, privileged bool) (int64, error)
	// GetAccountByUsername returns ErrNotFound for unknown usernames.
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	CountPrivileged(ctx context.Context) (int, error)
}

// ProgressStore is the per-account watch-history ledger.
type ProgressStore interface {
	RecordEvent(ctx context.Context, ev models.WatchEvent) error
	UpdateProgress(ctx context.Context, key models.HistoryKey, progressSeconds int64, completed bool) error
	ListHistory(ctx context.Context, accountID int64) ([]models.WatchHistoryEntry, error)
	// GetProgress returns ErrNotFound when the key has no row.
	GetProgress(ctx context.Context, key models.HistoryKey) (*models.WatchHistoryEntry, error)
	RemoveHistoryEntry(ctx context.Context, accountID, entryID int64) error
	ClearHistory(ctx context.Context, accountID int64) error
}

// Store is the single persistent resource behind the service.
type Store interface {
	AccountStore
	SessionStore
	ProgressStore
}

type ServiceConfig struct {
	SessionSecret []byte
	BcryptCost    int
}

// Service is the contract consumed by the web layer: credentials, sessions
// and watch history over one shared store.
type Service struct {
	store    Store
	verifier *CredentialVerifier
	ledger   *SessionLedger
}

func NewService(store Store, cfg ServiceConfig) (*Service, error) {
	ledger, err := NewSessionLedger(store, cfg.SessionSecret)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:    store,
		verifier: NewCredentialVerifier(cfg.BcryptCost),
		ledger:   ledger,
	}, nil
}

// Ledger exposes the session ledger for identity providers and the reaper.
func (s *Service) Ledger() *SessionLedger {
	return s.ledger
}

// Authenticate checks a username/password pair without creating a session.
// Wrong credentials give (nil, nil).
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	acct, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("username", username).Wrap(err)
	}

	target := dummyHash
	if acct != nil {
		target = acct.PasswordHash
	}
	ok := s.verifier.Verify(password, target)
	if acct == nil || !ok {
		return nil, nil
	}
	return &Identity{AccountID: acct.ID, Username: acct.Username, IsPrivileged: acct.IsPrivileged}, nil
}

// Login authenticates and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Identity, error) {
	id, err := s.Authenticate(ctx, username, password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return "", nil, err
	}
	if id == nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return "", nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}
	token, err := s.CreateSession(ctx, id.AccountID, id.Username, id.IsPrivileged)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return "", nil, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	id.SessionID, _, _ = SplitToken(token)
	return token, id, nil
}

func (s *Service) CreateSession(ctx context.Context, accountID int64, username string, privileged bool) (string, error) {
	token, err := s.ledger.Issue(ctx, accountID, username, privileged)
	if err != nil {
		return "", err
	}
	metrics.SessionsIssued.Inc()
	return token, nil
}

// ValidateSession never fails on a bad token; it returns a nil identity.
func (s *Service) ValidateSession(ctx context.Context, token string) (*Identity, error) {
	return s.ledger.Validate(ctx, token)
}

func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.ledger.Revoke(ctx, sessionID)
}

// Logout revokes the session behind token. Tokens that fail validation
// revoke nothing, so knowing a session identifier is not enough to end it.
func (s *Service) Logout(ctx context.Context, token string) error {
	id, err := s.ledger.Validate(ctx, token)
	if err != nil || id == nil {
		return err
	}
	return s.ledger.Revoke(ctx, id.SessionID)
}

// RecordProgress registers the title for the account and stores the
// reported position. Both steps are single atomic statements.
func (s *Service) RecordProgress(ctx context.Context, accountID int64, upd *ProgressUpdate) error {
	if err := upd.Validate(); err != nil {
		return err
	}
	ev := upd.event(accountID)
	if err := s.store.RecordEvent(ctx, ev); err != nil {
		return oops.Code("HISTORY_RECORD_FAILED").With("content_id", ev.ContentID).Wrap(err)
	}
	metrics.HistoryWrites.WithLabelValues("record").Inc()
	if err := s.store.UpdateProgress(ctx, ev.Key(), upd.ProgressSeconds(), upd.Completed); err != nil {
		return oops.Code("HISTORY_PROGRESS_FAILED").With("content_id", ev.ContentID).Wrap(err)
	}
	metrics.HistoryWrites.WithLabelValues("progress").Inc()
	return nil
}

func (s *Service) ListHistory(ctx context.Context, accountID int64) ([]models.WatchHistoryEntry, error) {
	entries, err := s.store.ListHistory(ctx, accountID)
	if err != nil {
		return nil, oops.Code("HISTORY_LIST_FAILED").With("account_id", accountID).Wrap(err)
	}
	return entries, nil
}

// ResumePosition returns the stored progress in seconds for the key, or 0.
func (s *Service) ResumePosition(ctx context.Context, key models.HistoryKey) (int64, error) {
	entry, err := s.store.GetProgress(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, oops.Code("HISTORY_GET_FAILED").With("content_id", key.ContentID).Wrap(err)
	}
	if entry.Completed {
		return 0, nil
	}
	return entry.ProgressSeconds, nil
}

func (s *Service) RemoveHistoryEntry(ctx context.Context, accountID, entryID int64) error {
	if err := s.store.RemoveHistoryEntry(ctx, accountID, entryID); err != nil {
		return oops.Code("HISTORY_REMOVE_FAILED").With("entry_id", entryID).Wrap(err)
	}
	metrics.HistoryWrites.WithLabelValues("remove").Inc()
	return nil
}

func (s *Service) ClearHistory(ctx context.Context, accountID int64) error {
	if err := s.store.ClearHistory(ctx, accountID); err != nil {
		return oops.Code("HISTORY_CLEAR_FAILED").With("account_id", accountID).Wrap(err)
	}
	metrics.HistoryWrites.WithLabelValues("clear").Inc()
	return nil
}

// CreateAccount hashes password and stores a new account.
func (s *Service) CreateAccount(ctx context.Context, username, password string, privileged bool) (*models.Account, error) {
	if username == "" {
		return nil, invalid("ACCOUNT_INVALID", "username is required")
	}
	hash, err := s.verifier.Hash(password)
	if err != nil {
		return nil, err
	}
	id, err := s.store.CreateAccount(ctx, username, hash, privileged)
	if err != nil {
		return nil, oops.Code("ACCOUNT_CREATE_FAILED").With("username", username).Wrap(err)
	}
	return &models.Account{ID: id, Username: username, IsPrivileged: privileged}, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").Wrap(err)
	}
	return accts, nil
}

// EnsureAdmin creates a privileged account when none exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	count, err := s.store.CountPrivileged(ctx)
	if err != nil {
		return oops.Code("ACCOUNT_COUNT_FAILED").Wrap(err)
	}
	if count > 0 {
		return nil
	}
	if _, err := s.CreateAccount(ctx, username, password, true); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("admin account created")
	return nil
}

// EnsureLocalAccount returns the identity of the single local account,
// creating it on first run.
func (s *Service) EnsureLocalAccount(ctx context.Context) (Identity, error) {
	acct, err := s.store.GetAccountByUsername(ctx, LocalUsername)
	if errors.Is(err, ErrNotFound) {
		log.Info().Msg("creating local account")
		created, cerr := s.CreateAccount(ctx, LocalUsername, LocalUsername, false)
		if cerr != nil {
			return Identity{}, cerr
		}
		return Identity{AccountID: created.ID, Username: created.Username}, nil
	}
	if err != nil {
		return Identity{}, oops.Code("ACCOUNT_LOOKUP_FAILED").Wrap(err)
	}
	return Identity{AccountID: acct.ID, Username: acct.Username, IsPrivileged: acct.IsPrivileged}, nil
}

// PurgeExpiredSessions runs one reaper pass.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.ledger.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SessionsPurged.Add(float64(n))
	return n, nil
}

// RunReaper purges expired sessions every interval until ctx is done.
func (s *Service) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Error().Err(err).Msg("session reaper failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("expired sessions purged")
			}
		}
	}
}
