package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/video-stream/shelf/internal/api/middleware"
	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/catalog"
	"github.com/video-stream/shelf/internal/db/models"
	"github.com/video-stream/shelf/internal/logging"
)

type StreamHandler struct {
	svc   *auth.Service
	embed *catalog.Embed
}

func NewStreamHandler(svc *auth.Service, embed *catalog.Embed) *StreamHandler {
	return &StreamHandler{svc: svc, embed: embed}
}

type streamResponse struct {
	Sources  []catalog.StreamSource `json:"sources"`
	Progress int64                  `json:"progress"`
}

func (h *StreamHandler) Movie(w http.ResponseWriter, r *http.Request) {
	contentID, ok := pathID(w, r)
	if !ok {
		return
	}
	progress := h.resume(r, models.HistoryKey{
		ContentID: contentID,
		MediaKind: models.KindMovie,
		Season:    models.NoLocator,
		Episode:   models.NoLocator,
	})
	url := h.embed.MovieURL(contentID, h.embed.Options(progress))
	jsonResponse(w, streamResponse{Sources: catalog.Sources(url), Progress: progress}, http.StatusOK)
}

// TV requires both season and episode query parameters.
func (h *StreamHandler) TV(w http.ResponseWriter, r *http.Request) {
	contentID, ok := pathID(w, r)
	if !ok {
		return
	}
	season, serr := strconv.ParseInt(r.URL.Query().Get("season"), 10, 64)
	episode, eerr := strconv.ParseInt(r.URL.Query().Get("episode"), 10, 64)
	if serr != nil || eerr != nil || season < 0 || episode < 0 {
		jsonError(w, "season and episode are required", http.StatusBadRequest)
		return
	}
	progress := h.resume(r, models.HistoryKey{
		ContentID: contentID,
		MediaKind: models.KindTV,
		Season:    season,
		Episode:   episode,
	})
	url := h.embed.TVURL(contentID, season, episode, h.embed.Options(progress))
	jsonResponse(w, streamResponse{Sources: catalog.Sources(url), Progress: progress}, http.StatusOK)
}

// resume looks up the caller's stored position. Lookup failures only cost
// the resume offset, so they are logged and ignored.
func (h *StreamHandler) resume(r *http.Request, key models.HistoryKey) int64 {
	id := middleware.GetIdentity(r)
	if id == nil {
		return 0
	}
	key.AccountID = id.AccountID
	pos, err := h.svc.ResumePosition(r.Context(), key)
	if err != nil {
		logging.Err(log.Ctx(r.Context()).Warn(), err).Msg("resume lookup failed")
		return 0
	}
	return pos
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, "invalid content id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
