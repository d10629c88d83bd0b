package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full gateway configuration, read from environment variables
// (STOCKCONSOLE_ prefix) with an optional config file for local development.
type Config struct {
	Env      string
	LogLevel string

	HTTP     HTTPConfig
	Upstream UpstreamConfig

	// DatabaseURL enables the postgres movement journal; empty keeps the
	// in-memory journal.
	DatabaseURL string

	// RedisAddr enables the summary cache; empty disables caching.
	RedisAddr  string
	SummaryTTL time.Duration
}

// HTTPConfig configures the gateway's own HTTP surface.
type HTTPConfig struct {
	Addr        string
	JWTSecret   string
	CORSOrigins []string
}

// UpstreamConfig configures the connection to the inventory API. Either a
// static bearer token or a username/password pair for the token endpoints
// must be set.
type UpstreamConfig struct {
	BaseURL  string
	Token    string
	Username string
	Password string

	// RateLimit caps outbound requests per second; Burst allows short spikes.
	RateLimit float64
	Burst     int
}

// Load reads configuration. The optional file argument points at a yaml
// config file; environment variables override it.
func Load(file string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOCKCONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("upstream.rate_limit", 10.0)
	v.SetDefault("upstream.burst", 5)
	v.SetDefault("summary_ttl", "60s")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Config{
		Env:         v.GetString("env"),
		LogLevel:    v.GetString("log_level"),
		DatabaseURL: v.GetString("database_url"),
		RedisAddr:   v.GetString("redis_addr"),
		SummaryTTL:  v.GetDuration("summary_ttl"),
		HTTP: HTTPConfig{
			Addr:        v.GetString("http.addr"),
			JWTSecret:   v.GetString("http.jwt_secret"),
			CORSOrigins: v.GetStringSlice("http.cors_origins"),
		},
		Upstream: UpstreamConfig{
			BaseURL:   strings.TrimRight(v.GetString("upstream.base_url"), "/"),
			Token:     v.GetString("upstream.token"),
			Username:  v.GetString("upstream.username"),
			Password:  v.GetString("upstream.password"),
			RateLimit: v.GetFloat64("upstream.rate_limit"),
			Burst:     v.GetInt("upstream.burst"),
		},
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Upstream.Token == "" && c.Upstream.Username == "" {
		return fmt.Errorf("either upstream.token or upstream.username/password is required")
	}
	if c.HTTP.JWTSecret == "" {
		return fmt.Errorf("http.jwt_secret is required")
	}
	return nil
}
