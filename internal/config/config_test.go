package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5, cfg.Database.MaxConns)
	assert.Equal(t, filepath.Join("./data", "streamshelf.db"), cfg.Database.Path)
	assert.Equal(t, "cookie", cfg.Auth.Mode)
	assert.Equal(t, time.Hour, cfg.Auth.ReaperInterval)
	assert.Len(t, cfg.Auth.SessionSecret, 64, "a random secret is generated when none is set")
	assert.Equal(t, "https://www.vidking.net", cfg.Catalog.EmbedBaseURL)
}

func TestLoad_RandomSecretDiffersPerLoad(t *testing.T) {
	a, err := Load("")
	require.NoError(t, err)
	b, err := Load("")
	require.NoError(t, err)
	assert.NotEqual(t, a.Auth.SessionSecret, b.Auth.SessionSecret)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("STREAMSHELF_SERVER_PORT", "8088")
	t.Setenv("STREAMSHELF_SERVER_CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("STREAMSHELF_AUTH_SESSION_SECRET", "s3cret")
	t.Setenv("STREAMSHELF_AUTH_MODE", "local")
	t.Setenv("STREAMSHELF_AUTH_REAPER_INTERVAL", "15m")
	t.Setenv("STREAMSHELF_DATABASE_PATH", "/var/lib/shelf.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "s3cret", cfg.Auth.SessionSecret)
	assert.Equal(t, "local", cfg.Auth.Mode)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ReaperInterval)
	assert.Equal(t, "/var/lib/shelf.db", cfg.Database.Path)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  cookie_secure: true
database:
  data_path: /srv/shelf
auth:
  session_secret: from-file
  admin_username: root
log:
  level: debug
  format: json
`), 0o600))
	t.Setenv("STREAMSHELF_AUTH_SESSION_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.CookieSecure)
	assert.Equal(t, filepath.Join("/srv/shelf", "streamshelf.db"), cfg.Database.Path)
	assert.Equal(t, "from-env", cfg.Auth.SessionSecret)
	assert.Equal(t, "root", cfg.Auth.AdminUsername)
	assert.Equal(t, "admin", cfg.Auth.AdminPassword)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
	t.Run("bad mode", func(t *testing.T) {
		t.Setenv("STREAMSHELF_AUTH_MODE", "oauth")
		_, err := Load("")
		require.Error(t, err)
	})
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("STREAMSHELF_SERVER_PORT", "70000")
		_, err := Load("")
		require.Error(t, err)
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "auth.session_secret", envKey("STREAMSHELF_AUTH_SESSION_SECRET"))
	assert.Equal(t, "server.port", envKey("STREAMSHELF_SERVER_PORT"))
	assert.Equal(t, "config", envKey("STREAMSHELF_CONFIG"))
}
