package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriter_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "json")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "v", line["k"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "chatty", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestErr_AttachesCode(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", "json")

	Err(log.Error(), oops.Code("HISTORY_LIST_FAILED").Wrap(errors.New("boom"))).Msg("failed")
	assert.Contains(t, buf.String(), `"code":"HISTORY_LIST_FAILED"`)

	buf.Reset()
	Err(log.Error(), errors.New("plain")).Msg("failed")
	assert.NotContains(t, buf.String(), `"code"`)
	assert.Contains(t, buf.String(), `"error":"plain"`)
}
