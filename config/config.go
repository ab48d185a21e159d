package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// Tracking pipeline knobs
	Tracking TrackingConfig `mapstructure:"tracking"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Port     int    `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	MonitorPort int    `mapstructure:"monitor_port"`
}

type PrometheusConfig struct {
	Port   int    `mapstructure:"port"`
	Target string `mapstructure:"target"`
}

// TrackingConfig holds the attribution-specific settings.
type TrackingConfig struct {
	// CookieSecret signs the per-(publisher,offer) seen marker cookie.
	CookieSecret string `mapstructure:"cookie_secret"`
	// DedupWindow is the rolling window used for the click uniqueness check.
	DedupWindow time.Duration `mapstructure:"dedup_window"`
	// SeenCookieTTL bounds how long the seen marker cookie stays valid.
	SeenCookieTTL time.Duration `mapstructure:"seen_cookie_ttl"`
	// OfferCacheTTL bounds the redis cache of offer redirect URLs.
	OfferCacheTTL time.Duration `mapstructure:"offer_cache_ttl"`
	// ListenAddr is the address the tracking server binds to.
	ListenAddr string `mapstructure:"listen_addr"`
}

const (
	defaultDedupWindow   = 24 * time.Hour
	defaultSeenCookieTTL = 30 * 24 * time.Hour
	defaultOfferCacheTTL = 5 * time.Minute
	defaultListenAddr    = ":8080"
)

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyTrackingDefaults(&cfg.Tracking)

	return &cfg, nil
}

func applyTrackingDefaults(t *TrackingConfig) {
	if t.DedupWindow <= 0 {
		t.DedupWindow = defaultDedupWindow
	}
	if t.SeenCookieTTL <= 0 {
		t.SeenCookieTTL = defaultSeenCookieTTL
	}
	if t.OfferCacheTTL <= 0 {
		t.OfferCacheTTL = defaultOfferCacheTTL
	}
	if t.ListenAddr == "" {
		t.ListenAddr = defaultListenAddr
	}
}

func bindEnvVars(v *viper.Viper) {
	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.monitor_port", "NATS_MONITOR_PORT")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")
	v.BindEnv("prometheus.target", "PROM_TARGET")

	// Tracking
	v.BindEnv("tracking.cookie_secret", "TRACKING_COOKIE_SECRET")
	v.BindEnv("tracking.dedup_window", "TRACKING_DEDUP_WINDOW")
	v.BindEnv("tracking.seen_cookie_ttl", "TRACKING_SEEN_COOKIE_TTL")
	v.BindEnv("tracking.offer_cache_ttl", "TRACKING_OFFER_CACHE_TTL")
	v.BindEnv("tracking.listen_addr", "TRACKING_LISTEN_ADDR")
}
