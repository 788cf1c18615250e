package auth

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/video-stream/shelf/internal/db/models"
)

// memStore is an in-memory Store used by the package tests.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	sessions map[string]*models.SessionRecord
	history  map[models.HistoryKey]*models.WatchHistoryEntry
	nextID   int64
	clock    int64

	sessionGets int
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*models.Account{},
		sessions: map[string]*models.SessionRecord{},
		history:  map[models.HistoryKey]*models.WatchHistoryEntry{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateAccount(_ context.Context, username, hash string, privileged bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	if _, ok := m.accounts[username]; ok {
		return 0, ErrConflict
	}
	a := &models.Account{ID: m.id(), Username: username, PasswordHash: hash, IsPrivileged: privileged}
	m.accounts[username] = a
	return a.ID, nil
}

func (m *memStore) GetAccountByUsername(_ context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	a, ok := m.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ListAccounts(context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Account{}
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CountPrivileged(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	n := 0
	for _, a := range m.accounts {
		if a.IsPrivileged {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateSession(_ context.Context, rec *models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	rec.ID = m.id()
	cp := *rec
	m.sessions[rec.SessionID] = &cp
	return nil
}

func (m *memStore) GetSession(_ context.Context, sessionID string) (*models.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionGets++
	if m.failWith != nil {
		return nil, m.failWith
	}
	rec, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *memStore) DeleteExpiredSessions(_ context.Context, now int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	var n int64
	for id, rec := range m.sessions {
		if rec.ExpiresAt < now {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) session(id string) *models.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *memStore) RecordEvent(_ context.Context, ev models.WatchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.clock++
	at := time.Unix(m.clock, 0).UTC()
	if e, ok := m.history[ev.Key()]; ok {
		e.WatchedAt = at
		return nil
	}
	m.history[ev.Key()] = &models.WatchHistoryEntry{
		ID: m.id(), AccountID: ev.AccountID, ContentID: ev.ContentID, MediaKind: ev.MediaKind,
		Title: ev.Title, PosterRef: ev.PosterRef, Season: ev.Season, Episode: ev.Episode,
		EpisodeTitle: ev.EpisodeTitle, WatchedAt: at,
	}
	return nil
}

func (m *memStore) UpdateProgress(_ context.Context, key models.HistoryKey, progress int64, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if e, ok := m.history[key]; ok {
		m.clock++
		e.ProgressSeconds = progress
		e.Completed = completed
		e.WatchedAt = time.Unix(m.clock, 0).UTC()
	}
	return nil
}

func (m *memStore) ListHistory(_ context.Context, accountID int64) ([]models.WatchHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []models.WatchHistoryEntry{}
	for _, e := range m.history {
		if e.AccountID == accountID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WatchedAt.After(out[j].WatchedAt) })
	if len(out) > 50 {
		out = out[:50]
	}
	return out, nil
}

func (m *memStore) GetProgress(_ context.Context, key models.HistoryKey) (*models.WatchHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	e, ok := m.history[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) RemoveHistoryEntry(_ context.Context, accountID, entryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.history {
		if e.ID == entryID && e.AccountID == accountID {
			delete(m.history, k)
		}
	}
	return nil
}

func (m *memStore) ClearHistory(_ context.Context, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.history {
		if e.AccountID == accountID {
			delete(m.history, k)
		}
	}
	return nil
}

var errBoom = errors.New("disk on fire")
