package models

import "time"

// NoLocator stands in for "no season" / "no episode" so that movie rows can
// take part in the watch_history uniqueness key.
const NoLocator int64 = -1

// Media kinds accepted by the progress ledger.
const (
	KindMovie = "movie"
	KindTV    = "tv"
)

type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsPrivileged bool      `json:"is_privileged"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionRecord is the server-held half of a session token.
// Username and IsPrivileged are captured at issuance and are not refreshed
// from the account afterwards.
type SessionRecord struct {
	ID           int64
	SessionID    string
	AccountID    int64
	Username     string
	IsPrivileged bool
	ExpiresAt    int64 // unix seconds
	CreatedAt    time.Time
}

// HistoryKey identifies one logical watch_history row.
type HistoryKey struct {
	AccountID int64
	ContentID int64
	MediaKind string
	Season    int64
	Episode   int64
}

// WatchHistoryEntry represents a single watch history record
type WatchHistoryEntry struct {
	ID              int64     `json:"id"`
	AccountID       int64     `json:"account_id"`
	ContentID       int64     `json:"content_id"`
	MediaKind       string    `json:"media_kind"`
	Title           string    `json:"title"`
	PosterRef       string    `json:"poster_ref,omitempty"`
	Season          int64     `json:"season"`
	Episode         int64     `json:"episode"`
	EpisodeTitle    string    `json:"episode_title,omitempty"`
	ProgressSeconds int64     `json:"progress_seconds"`
	Completed       bool      `json:"completed"`
	WatchedAt       time.Time `json:"watched_at"`
}

// MinutesWatched floors the stored progress to whole minutes.
func (e WatchHistoryEntry) MinutesWatched() int64 {
	if e.ProgressSeconds <= 0 {
		return 0
	}
	return e.ProgressSeconds / 60
}

// IsEpisode reports whether the entry refers to a single TV episode.
func (e WatchHistoryEntry) IsEpisode() bool {
	return e.Season != NoLocator && e.Episode != NoLocator
}

// WatchEvent is the payload of a "started watching" notification.
type WatchEvent struct {
	AccountID    int64
	ContentID    int64
	MediaKind    string
	Title        string
	PosterRef    string
	Season       int64
	Episode      int64
	EpisodeTitle string
}

func (ev WatchEvent) Key() HistoryKey {
	return HistoryKey{
		AccountID: ev.AccountID,
		ContentID: ev.ContentID,
		MediaKind: ev.MediaKind,
		Season:    ev.Season,
		Episode:   ev.Episode,
	}
}

// Locator converts an optional season/episode number to its stored form.
func Locator(v *int64) int64 {
	if v == nil {
		return NoLocator
	}
	return *v
}
