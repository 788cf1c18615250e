package auth

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/video-stream/shelf/internal/db/models"
)

var validate = validator.New()

// ProgressUpdate is one playback telemetry report from a client.
type ProgressUpdate struct {
	ContentID    int64   `json:"tmdb_id" validate:"required,gt=0"`
	MediaKind    string  `json:"media_type" validate:"required,oneof=movie tv"`
	Title        string  `json:"title" validate:"required,max=512"`
	PosterRef    string  `json:"poster_path" validate:"max=512"`
	Season       *int64  `json:"season" validate:"omitempty,gte=0"`
	Episode      *int64  `json:"episode" validate:"omitempty,gte=0"`
	EpisodeTitle string  `json:"episode_title" validate:"max=512"`
	CurrentTime  float64 `json:"current_time" validate:"gte=0,lte=2147483647"`
	Duration     float64 `json:"duration" validate:"gte=0"`
	Completed    bool    `json:"completed"`
}

// Validate checks field constraints and the season/episode pairing rules.
func (p *ProgressUpdate) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return invalid("PROGRESS_INVALID", strings.Join(msgs, "; "))
		}
		return invalid("PROGRESS_INVALID", err.Error())
	}
	if math.IsNaN(p.CurrentTime) {
		return invalid("PROGRESS_INVALID", "current_time is not a number")
	}
	if (p.Season == nil) != (p.Episode == nil) {
		return invalid("PROGRESS_LOCATOR_INCOMPLETE", "season and episode must be given together")
	}
	switch p.MediaKind {
	case models.KindTV:
		if p.Season == nil {
			return invalid("PROGRESS_LOCATOR_MISSING", "season and episode are required for tv")
		}
	case models.KindMovie:
		if p.Season != nil {
			return invalid("PROGRESS_LOCATOR_UNEXPECTED", "movies take no season or episode")
		}
	}
	return nil
}

// ProgressSeconds truncates the reported playback position to whole seconds.
func (p *ProgressUpdate) ProgressSeconds() int64 {
	return int64(math.Trunc(p.CurrentTime))
}

func (p *ProgressUpdate) event(accountID int64) models.WatchEvent {
	return models.WatchEvent{
		AccountID:    accountID,
		ContentID:    p.ContentID,
		MediaKind:    p.MediaKind,
		Title:        p.Title,
		PosterRef:    p.PosterRef,
		Season:       models.Locator(p.Season),
		Episode:      models.Locator(p.Episode),
		EpisodeTitle: p.EpisodeTitle,
	}
}

func invalid(code, msg string) error {
	return oops.Code(code).Wrap(fmt.Errorf("%w: %s", ErrValidation, msg))
}
