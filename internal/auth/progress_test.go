package auth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-stream/shelf/internal/db/models"
)

func ptr(v int64) *int64 { return &v }

func TestProgressUpdate_Validate(t *testing.T) {
	movie := func() ProgressUpdate {
		return ProgressUpdate{ContentID: 550, MediaKind: models.KindMovie, Title: "Fight Club", CurrentTime: 125.9}
	}
	episode := func() ProgressUpdate {
		return ProgressUpdate{ContentID: 1399, MediaKind: models.KindTV, Title: "Game of Thrones", Season: ptr(1), Episode: ptr(2)}
	}

	tests := []struct {
		name    string
		mutate  func(*ProgressUpdate)
		base    func() ProgressUpdate
		wantErr bool
	}{
		{name: "valid movie", base: movie},
		{name: "valid episode", base: episode},
		{name: "season zero specials", base: episode, mutate: func(p *ProgressUpdate) { p.Season = ptr(0) }},
		{name: "missing content id", base: movie, mutate: func(p *ProgressUpdate) { p.ContentID = 0 }, wantErr: true},
		{name: "negative content id", base: movie, mutate: func(p *ProgressUpdate) { p.ContentID = -3 }, wantErr: true},
		{name: "unknown media kind", base: movie, mutate: func(p *ProgressUpdate) { p.MediaKind = "anime" }, wantErr: true},
		{name: "missing title", base: movie, mutate: func(p *ProgressUpdate) { p.Title = "" }, wantErr: true},
		{name: "negative position", base: movie, mutate: func(p *ProgressUpdate) { p.CurrentTime = -1 }, wantErr: true},
		{name: "NaN position", base: movie, mutate: func(p *ProgressUpdate) { p.CurrentTime = math.NaN() }, wantErr: true},
		{name: "tv without locators", base: episode, mutate: func(p *ProgressUpdate) { p.Season, p.Episode = nil, nil }, wantErr: true},
		{name: "season without episode", base: episode, mutate: func(p *ProgressUpdate) { p.Episode = nil }, wantErr: true},
		{name: "movie with locators", base: movie, mutate: func(p *ProgressUpdate) { p.Season, p.Episode = ptr(1), ptr(1) }, wantErr: true},
		{name: "negative episode", base: episode, mutate: func(p *ProgressUpdate) { p.Episode = ptr(-1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.base()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			err := p.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProgressUpdate_ProgressSecondsTruncates(t *testing.T) {
	assert.Equal(t, int64(125), (&ProgressUpdate{CurrentTime: 125.9}).ProgressSeconds())
	assert.Equal(t, int64(0), (&ProgressUpdate{CurrentTime: 0.99}).ProgressSeconds())
	assert.Equal(t, int64(60), (&ProgressUpdate{CurrentTime: 60}).ProgressSeconds())
}

func TestProgressUpdate_EventUsesSentinelForMovies(t *testing.T) {
	p := ProgressUpdate{ContentID: 550, MediaKind: models.KindMovie, Title: "Fight Club"}
	ev := p.event(9)
	assert.Equal(t, int64(9), ev.AccountID)
	assert.Equal(t, models.NoLocator, ev.Season)
	assert.Equal(t, models.NoLocator, ev.Episode)

	tv := ProgressUpdate{ContentID: 1399, MediaKind: models.KindTV, Title: "GoT", Season: ptr(3), Episode: ptr(9)}
	ev = tv.event(9)
	assert.Equal(t, int64(3), ev.Season)
	assert.Equal(t, int64(9), ev.Episode)
}
