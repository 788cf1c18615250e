// Package catalog holds the collaborators that talk to the content
// catalog and the embeddable video source.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Metadata is the read-only catalog API (TMDB). The web layer depends on
// this interface only.
type Metadata interface {
	Search(ctx context.Context, query string, page int) (*SearchResponse, error)
	Movie(ctx context.Context, id int64) (*Title, error)
	TVShow(ctx context.Context, id int64) (*Title, error)
}

type Title struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Overview   string `json:"overview,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
	MediaKind  string `json:"media_type"`
}

type SearchResponse struct {
	Page    int     `json:"page"`
	Results []Title `json:"results"`
}

// StreamSource is one playable source for a title.
type StreamSource struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quality  string `json:"quality,omitempty"`
	Language string `json:"language,omitempty"`
	Server   string `json:"server"`
}

// EmbedOptions are the player parameters appended to an embed URL.
type EmbedOptions struct {
	Color           string
	AutoPlay        bool
	NextEpisode     bool
	EpisodeSelector bool
	// Progress is the resume position in seconds; zero omits it.
	Progress int64
}

func (o EmbedOptions) query() string {
	var params []string
	if o.Color != "" {
		params = append(params, "color="+url.QueryEscape(o.Color))
	}
	if o.AutoPlay {
		params = append(params, "autoPlay=true")
	}
	if o.NextEpisode {
		params = append(params, "nextEpisode=true")
	}
	if o.EpisodeSelector {
		params = append(params, "episodeSelector=true")
	}
	if o.Progress > 0 {
		params = append(params, "progress="+strconv.FormatInt(o.Progress, 10))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + strings.Join(params, "&")
}

// Embed builds player URLs for the embed video source.
type Embed struct {
	baseURL string
	color   string
}

func NewEmbed(baseURL, color string) *Embed {
	return &Embed{baseURL: strings.TrimRight(baseURL, "/"), color: color}
}

// Options returns the default player options with the given resume position.
func (e *Embed) Options(progress int64) EmbedOptions {
	return EmbedOptions{
		Color:           e.color,
		AutoPlay:        true,
		NextEpisode:     true,
		EpisodeSelector: true,
		Progress:        progress,
	}
}

func (e *Embed) MovieURL(contentID int64, opts EmbedOptions) string {
	u := fmt.Sprintf("%s/embed/movie/%d%s", e.baseURL, contentID, opts.query())
	log.Debug().Str("url", u).Msg("movie embed url")
	return u
}

func (e *Embed) TVURL(contentID, season, episode int64, opts EmbedOptions) string {
	u := fmt.Sprintf("%s/embed/tv/%d/%d/%d%s", e.baseURL, contentID, season, episode, opts.query())
	log.Debug().Str("url", u).Msg("tv embed url")
	return u
}

// Sources wraps an embed URL as the single available stream.
func Sources(embedURL string) []StreamSource {
	return []StreamSource{{
		ID:       embedURL,
		Name:     "Vidking",
		Quality:  "Auto",
		Language: "EN",
		Server:   "vidking",
	}}
}
