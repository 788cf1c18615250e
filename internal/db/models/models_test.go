package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinutesWatched(t *testing.T) {
	for progress, want := range map[int64]int64{0: 0, -5: 0, 59: 0, 60: 1, 125: 2, 3599: 59} {
		assert.Equal(t, want, WatchHistoryEntry{ProgressSeconds: progress}.MinutesWatched(), progress)
	}
}

func TestLocator(t *testing.T) {
	three := int64(3)
	assert.Equal(t, NoLocator, Locator(nil))
	assert.Equal(t, int64(3), Locator(&three))
}

func TestIsEpisode(t *testing.T) {
	assert.False(t, WatchHistoryEntry{Season: NoLocator, Episode: NoLocator}.IsEpisode())
	assert.True(t, WatchHistoryEntry{Season: 0, Episode: 1}.IsEpisode())
}
