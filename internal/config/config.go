// Package config loads service settings from defaults, an optional config
// file, a .env file and AFFINITY_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix = "AFFINITY"

	// DevShareSecret signs share tokens when no secret is configured. It is
	// rejected in release mode.
	DevShareSecret = "insecure-dev-share-secret"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Content   ContentConfig   `mapstructure:"content"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Compress  CompressConfig  `mapstructure:"compression"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Share     ShareConfig     `mapstructure:"share"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
	EnableHSTS     bool          `mapstructure:"enable_hsts"`
}

type ContentConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type QuizConfig struct {
	MaxQuestions int           `mapstructure:"max_questions"`
	RunnersUp    int           `mapstructure:"runners_up"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	MaxSessions  int           `mapstructure:"max_sessions"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type CompressConfig struct {
	Enabled bool `mapstructure:"enabled"`
	MinSize int  `mapstructure:"min_size"`
	Level   int  `mapstructure:"level"`
}

type RateLimitConfig struct {
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Burst             int    `mapstructure:"burst"`
	RedisAddr         string `mapstructure:"redis_addr"`
	RedisPassword     string `mapstructure:"redis_password"`
	RedisDB           int    `mapstructure:"redis_db"`
}

type ShareConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.request_timeout", 15*time.Second)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.enable_hsts", false)

	v.SetDefault("content.data_dir", "")

	v.SetDefault("quiz.max_questions", 10)
	v.SetDefault("quiz.runners_up", 3)
	v.SetDefault("quiz.session_ttl", 30*time.Minute)
	v.SetDefault("quiz.max_sessions", 10000)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("compression.enabled", true)
	v.SetDefault("compression.min_size", 1024)
	v.SetDefault("compression.level", -1)

	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.redis_addr", "")
	v.SetDefault("rate_limit.redis_password", "")
	v.SetDefault("rate_limit.redis_db", 0)

	v.SetDefault("share.secret", "")
	v.SetDefault("share.ttl", 30*24*time.Hour)
	v.SetDefault("share.issuer", "election-affinity")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
}

// Load builds the configuration. A non-empty path must point to a readable
// config file; with an empty path a config.{yaml,json,toml} in the working
// directory is used when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// conventional names used by container platforms
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.mode", envPrefix+"_SERVER_MODE", "GIN_MODE")
	_ = v.BindEnv("rate_limit.redis_addr", envPrefix+"_RATE_LIMIT_REDIS_ADDR", "REDIS_ADDR")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Share.Secret == "" {
		cfg.Share.Secret = DevShareSecret
		if cfg.Server.Mode != "release" {
			slog.Warn("No share secret configured, using development secret")
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		slog.Info("Configuration file loaded", "path", used)
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}

	if c.Quiz.MaxQuestions < 0 {
		errs = append(errs, errors.New("quiz.max_questions must not be negative"))
	}
	if c.Quiz.RunnersUp < 0 {
		errs = append(errs, errors.New("quiz.runners_up must not be negative"))
	}
	if c.Quiz.SessionTTL <= 0 {
		errs = append(errs, errors.New("quiz.session_ttl must be positive"))
	}
	if c.Quiz.MaxSessions <= 0 {
		errs = append(errs, errors.New("quiz.max_sessions must be positive"))
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive when the cache is enabled"))
	}

	if c.Compress.MinSize < 0 {
		errs = append(errs, errors.New("compression.min_size must not be negative"))
	}
	if c.Compress.Level < -2 || c.Compress.Level > 9 {
		errs = append(errs, fmt.Errorf("compression.level %d must be between -2 and 9", c.Compress.Level))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("rate_limit.requests_per_minute must be positive"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit.burst must be positive"))
	}

	if c.Share.TTL <= 0 {
		errs = append(errs, errors.New("share.ttl must be positive"))
	}
	if c.Share.Issuer == "" {
		errs = append(errs, errors.New("share.issuer must not be empty"))
	}
	if c.Server.Mode == "release" && (c.Share.Secret == DevShareSecret || len(c.Share.Secret) < 32) {
		errs = append(errs, fmt.Errorf("share.secret is too short (%d chars), must be at least 32 characters in release mode", len(c.Share.Secret)))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel maps a configured level name onto slog.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q must be debug, info, warn or error", level)
	}
	return l, nil
}
