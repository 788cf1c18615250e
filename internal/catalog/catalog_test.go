package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_MovieURL(t *testing.T) {
	e := NewEmbed("https://www.vidking.net/", "e50914")

	assert.Equal(t,
		"https://www.vidking.net/embed/movie/550?color=e50914&autoPlay=true&nextEpisode=true&episodeSelector=true",
		e.MovieURL(550, e.Options(0)))
	assert.Equal(t,
		"https://www.vidking.net/embed/movie/550?color=e50914&autoPlay=true&nextEpisode=true&episodeSelector=true&progress=125",
		e.MovieURL(550, e.Options(125)))
}

func TestEmbed_TVURL(t *testing.T) {
	e := NewEmbed("https://embed.example", "")
	assert.Equal(t,
		"https://embed.example/embed/tv/1399/1/2?progress=30",
		e.TVURL(1399, 1, 2, EmbedOptions{Progress: 30}))
	assert.Equal(t, "https://embed.example/embed/tv/1399/0/1", e.TVURL(1399, 0, 1, EmbedOptions{}))
}

func TestSources(t *testing.T) {
	src := Sources("https://x/embed/movie/1")
	require.Len(t, src, 1)
	assert.Equal(t, "https://x/embed/movie/1", src[0].ID)
	assert.Equal(t, "vidking", src[0].Server)
}
