package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "STREAMSHELF_"

// ConfigPathEnvVar names a YAML file to layer between defaults and env.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
	Catalog  CatalogConfig  `koanf:"catalog"`
}

type ServerConfig struct {
	Host         string   `koanf:"host"`
	Port         int      `koanf:"port"`
	CORSOrigins  []string `koanf:"cors_origins"`
	CookieSecure bool     `koanf:"cookie_secure"`
	// LoginRateLimit is the number of login attempts allowed per IP per minute.
	LoginRateLimit int `koanf:"login_rate_limit"`
}

type DatabaseConfig struct {
	DataPath string `koanf:"data_path"`
	Path     string `koanf:"path"`
	MaxConns int    `koanf:"max_conns"`
}

type AuthConfig struct {
	// Mode is "cookie" (multi-user login) or "local" (always the local account).
	Mode           string        `koanf:"mode"`
	SessionSecret  string        `koanf:"session_secret"`
	AdminUsername  string        `koanf:"admin_username"`
	AdminPassword  string        `koanf:"admin_password"`
	BcryptCost     int           `koanf:"bcrypt_cost"`
	ReaperInterval time.Duration `koanf:"reaper_interval"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CatalogConfig struct {
	TMDBAPIKey   string `koanf:"tmdb_api_key"`
	EmbedBaseURL string `koanf:"embed_base_url"`
	EmbedColor   string `koanf:"embed_color"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           3000,
			CORSOrigins:    []string{"*"},
			LoginRateLimit: 10,
		},
		Database: DatabaseConfig{
			DataPath: "./data",
			MaxConns: 5,
		},
		Auth: AuthConfig{
			Mode:           "cookie",
			AdminUsername:  "admin",
			AdminPassword:  "admin",
			BcryptCost:     10,
			ReaperInterval: time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Catalog: CatalogConfig{
			EmbedBaseURL: "https://www.vidking.net",
			EmbedColor:   "e50914",
		},
	}
}

// Load layers struct defaults, an optional YAML file and STREAMSHELF_*
// environment variables, in increasing priority. path overrides
// STREAMSHELF_CONFIG when non-empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// CORS origins: comma-separated list when given through the environment
	if raw, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitList(raw)); err != nil {
			return nil, fmt.Errorf("parse cors origins: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps STREAMSHELF_AUTH_SESSION_SECRET to auth.session_secret.
// The first underscore separates the section from the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, found := strings.Cut(s, "_")
	if !found {
		return s
	}
	return section + "." + key
}

func splitList(raw string) []string {
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) finish() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Auth.Mode {
	case "cookie", "local":
	default:
		return fmt.Errorf("auth.mode must be cookie or local, got %q", c.Auth.Mode)
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.Database.DataPath, "streamshelf.db")
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	// Session secret: require explicit setting or generate random
	if c.Auth.SessionSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		c.Auth.SessionSecret = hex.EncodeToString(b)
		log.Warn().Msg("auth.session_secret not set, using random secret. Sessions will not survive restarts.")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
