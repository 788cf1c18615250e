package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/video-stream/shelf/internal/api/middleware"
	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/db/models"
)

type HistoryHandler struct {
	svc *auth.Service
}

func NewHistoryHandler(svc *auth.Service) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// historyItem is the wire form of a history entry. Locators are omitted for
// movies instead of leaking the storage sentinel.
type historyItem struct {
	ID              int64  `json:"id"`
	ContentID       int64  `json:"tmdb_id"`
	MediaKind       string `json:"media_type"`
	Title           string `json:"title"`
	PosterRef       string `json:"poster_path,omitempty"`
	Season          *int64 `json:"season,omitempty"`
	Episode         *int64 `json:"episode,omitempty"`
	EpisodeTitle    string `json:"episode_title,omitempty"`
	ProgressSeconds int64  `json:"progress_seconds"`
	MinutesWatched  int64  `json:"minutes_watched"`
	Completed       bool   `json:"completed"`
	WatchedAt       string `json:"watched_at"`
}

func toHistoryItem(e models.WatchHistoryEntry) historyItem {
	item := historyItem{
		ID:              e.ID,
		ContentID:       e.ContentID,
		MediaKind:       e.MediaKind,
		Title:           e.Title,
		PosterRef:       e.PosterRef,
		EpisodeTitle:    e.EpisodeTitle,
		ProgressSeconds: e.ProgressSeconds,
		MinutesWatched:  e.MinutesWatched(),
		Completed:       e.Completed,
		WatchedAt:       e.WatchedAt.UTC().Format(time.RFC3339),
	}
	if e.IsEpisode() {
		season, episode := e.Season, e.Episode
		item.Season, item.Episode = &season, &episode
	}
	return item
}

// SaveProgress records a playback report. Anonymous callers are accepted and
// ignored so that players need not know whether anyone is signed in.
func (h *HistoryHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req auth.ProgressUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.RecordProgress(r.Context(), id.AccountID, &req); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items := []historyItem{}
	id := middleware.GetIdentity(r)
	if id == nil {
		jsonResponse(w, items, http.StatusOK)
		return
	}

	entries, err := h.svc.ListHistory(r.Context(), id.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, e := range entries {
		items = append(items, toHistoryItem(e))
	}
	jsonResponse(w, items, http.StatusOK)
}

// Remove deletes one entry. Entries owned by other accounts are silently
// left alone.
func (h *HistoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || entryID <= 0 {
		jsonError(w, "invalid history id", http.StatusBadRequest)
		return
	}
	if err := h.svc.RemoveHistoryEntry(r.Context(), id.AccountID, entryID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if err := h.svc.ClearHistory(r.Context(), id.AccountID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
