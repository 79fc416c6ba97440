package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAPIURL is used when neither the config file nor the environment
// name a base URL.
const DefaultAPIURL = "https://api.globalmusic.example"

// Session backends.
const (
	BackendDisk  = "disk"
	BackendRedis = "redis"
)

// Config is the resolved console configuration.
type Config struct {
	APIURL    string
	PageLimit int
	Debounce  time.Duration
	Timeout   time.Duration
	Session   SessionConfig
	Redis     RedisConfig
	CMS       CMSConfig
}

// SessionConfig selects where credentials live.
type SessionConfig struct {
	Backend string
	Path    string
	// Prefix namespaces redis keys.
	Prefix string
}

// RedisConfig holds the connection settings for the redis session backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CMSConfig points at the Sanity project behind the marketing site.
type CMSConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
}

// LoadConfig reads `.env`, then `.backstage.yaml` from $BACKSTAGE_CONFIG_PATH,
// the working directory, or the home directory, then BACKSTAGE_* variables.
// VITE_API_URL is honoured so the dashboard's existing `.env` keeps working.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("store: read .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("page_limit", 10)
	v.SetDefault("debounce", "500ms")
	v.SetDefault("timeout", "30s")
	v.SetDefault("session.backend", BackendDisk)
	v.SetDefault("session.path", "~/.backstage")
	v.SetDefault("session.prefix", "backstage:")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("cms.dataset", "production")
	v.SetDefault("cms.api_version", "2023-05-03")

	v.SetConfigName(".backstage") // .yaml is implicit
	v.SetEnvPrefix("BACKSTAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_url", "VITE_API_URL")

	if override := os.Getenv("BACKSTAGE_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	cfg := &Config{
		APIURL:    strings.TrimRight(v.GetString("api_url"), "/"),
		PageLimit: v.GetInt("page_limit"),
		Debounce:  v.GetDuration("debounce"),
		Timeout:   v.GetDuration("timeout"),
		Session: SessionConfig{
			Backend: strings.ToLower(v.GetString("session.backend")),
			Path:    v.GetString("session.path"),
			Prefix:  v.GetString("session.prefix"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		CMS: CMSConfig{
			ProjectID:  v.GetString("cms.project_id"),
			Dataset:    v.GetString("cms.dataset"),
			APIVersion: v.GetString("cms.api_version"),
			Token:      v.GetString("cms.token"),
			UseCDN:     v.GetBool("cms.use_cdn"),
		},
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 10
	}
	return cfg, nil
}

// OpenCredentials opens the configured session backend.
func OpenCredentials(ctx context.Context, cfg *Config) (Credentials, error) {
	switch cfg.Session.Backend {
	case "", BackendDisk:
		return OpenDisk(cfg.Session.Path)
	case BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.Session.Prefix), nil
	default:
		return nil, fmt.Errorf("store: unknown session backend %q", cfg.Session.Backend)
	}
}
