package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// BackendConfig points the console at the REST backend it administers.
type BackendConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	IntegrationPrefix string        `mapstructure:"integration_prefix"`
	Currency          string        `mapstructure:"currency"`
}

type SessionConfig struct {
	DBPath         string        `mapstructure:"db_path"`
	MaxConnections int           `mapstructure:"max_connections"`
	Secret         string        `mapstructure:"secret"`
	PruneInterval  time.Duration `mapstructure:"prune_interval"`
}

type CacheConfig struct {
	KeepUnusedFor   time.Duration `mapstructure:"keep_unused_for"`
	RefetchInterval time.Duration `mapstructure:"refetch_interval"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

type BroadcastConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	RedisAddr string `mapstructure:"redis_addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Channel   string `mapstructure:"channel"`
	Secret    string `mapstructure:"secret"`
}

// RateLimitConfig caps console requests per session (or per IP before login).
type RateLimitConfig struct {
	ReadsPerMinute  int           `mapstructure:"reads_per_minute"`
	WritesPerMinute int           `mapstructure:"writes_per_minute"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

type AuditConfig struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5173)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("backend.base_url", "http://localhost:5000/api/v1")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.integration_prefix", "/integrations")
	v.SetDefault("backend.currency", "USD")

	v.SetDefault("session.db_path", "./data/console.db")
	v.SetDefault("session.max_connections", 1)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.prune_interval", 15*time.Minute)

	v.SetDefault("cache.keep_unused_for", 60*time.Second)
	v.SetDefault("cache.refetch_interval", 30*time.Second)
	v.SetDefault("cache.sweep_interval", time.Minute)

	v.SetDefault("broadcast.enabled", false)
	v.SetDefault("broadcast.redis_addr", "localhost:6379")
	v.SetDefault("broadcast.password", "")
	v.SetDefault("broadcast.db", 0)
	v.SetDefault("broadcast.channel", "console:invalidate")
	v.SetDefault("broadcast.secret", "")

	v.SetDefault("rate_limit.reads_per_minute", 600)
	v.SetDefault("rate_limit.writes_per_minute", 120)
	v.SetDefault("rate_limit.sweep_interval", 10*time.Minute)

	v.SetDefault("audit.retention", 30*24*time.Hour)
	v.SetDefault("audit.prune_interval", time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
}

// Load reads the config file at path. Environment variables override file
// values, with "." replaced by "_" (BACKEND_BASE_URL, SESSION_SECRET, ...).
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
