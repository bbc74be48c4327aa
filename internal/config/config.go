package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	MigrateOnStart     bool
	ShutdownTimeout    time.Duration
	BodyLimitBytes     int64

	DefaultShopID uuid.UUID
	ShopHosts     string

	AdminKeyHash   string
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	JWTClockSkew   time.Duration
	IdempotencyTTL time.Duration

	CacheTTL        time.Duration
	GlobalRateLimit string
	CodeApplyWindow time.Duration
	CodeApplyMax    int

	WorkerConcurrency int
	WorkerQueue       string
	WarmDelay         time.Duration
	WarmLockTTL       time.Duration

	Obs Observability
}

// Observability groups the OBS_* and SECURE_* switches shared by the API and
// worker binaries.
type Observability struct {
	LogFormat        string
	LogLevel         string
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
	PprofEnabled     bool
	PprofUser        string
	PprofPass        string
	HSTS             bool
	ReadyTimeout     time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(nil)
}

// MustLoad is Load for entrypoints that cannot continue without config.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests loads config with overrides layered over the process
// environment. An empty override value unsets the key. The process
// environment is not modified.
func LoadForTests(overrides map[string]string) (*Config, error) {
	return load(overrides)
}

func load(overrides map[string]string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	for key, value := range overrides {
		if value == "" {
			k.Delete(key)
			continue
		}
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}
	v := vars{k}

	cfg := &Config{
		AppEnv:             v.str("APP_ENV", "development"),
		Port:               v.str("PORT", "8080"),
		DatabaseURL:        v.str("DATABASE_URL", ""),
		RedisURL:           v.str("REDIS_URL", ""),
		CORSAllowedOrigins: v.list("CORS_ALLOWED_ORIGINS"),
		MigrateOnStart:     v.flag("MIGRATE_ON_START"),
		ShutdownTimeout:    v.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		BodyLimitBytes:     int64(v.integer("HTTP_BODY_LIMIT_BYTES", 1<<20)),
		ShopHosts:          v.str("SHOP_HOSTS", ""),
		AdminKeyHash:       v.str("ADMIN_KEY_HASH", ""),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          v.str("JWT_ISSUER", ""),
		JWTAudience:        v.str("JWT_AUDIENCE", ""),
		JWTClockSkew:       v.duration("JWT_CLOCK_SKEW", 30*time.Second),
		IdempotencyTTL:     v.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		CacheTTL:           v.duration("PRICING_CACHE_TTL", 10*time.Minute),
		GlobalRateLimit:    v.str("RATE_LIMIT_GLOBAL", "300-M"),
		CodeApplyWindow:    v.duration("RATE_LIMIT_CODE_WINDOW", time.Minute),
		CodeApplyMax:       v.integer("RATE_LIMIT_CODE_MAX", 20),
		WorkerConcurrency:  v.integer("WORKER_CONCURRENCY", 4),
		WorkerQueue:        v.str("WORKER_QUEUE", "pricing"),
		WarmDelay:          v.duration("CACHE_WARM_DELAY", 2*time.Second),
		WarmLockTTL:        v.duration("CACHE_WARM_LOCK_TTL", 30*time.Second),
		Obs: Observability{
			LogFormat:        v.str("OBS_LOG_FORMAT", "json"),
			LogLevel:         v.str("OBS_LOG_LEVEL", "info"),
			MetricsEnabled:   v.flagOr("OBS_ENABLE_PROMETHEUS", true),
			MetricsNamespace: v.str("OBS_METRICS_NAMESPACE", "pricing"),
			MetricsBuckets:   v.str("OBS_METRICS_BUCKETS_MS", ""),
			TracingEnabled:   v.flagOr("OBS_ENABLE_TRACING", true),
			TracingExporter:  v.str("OBS_TRACING_EXPORTER", "otlp"),
			OTLPEndpoint:     v.str("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio:    v.float("OBS_TRACING_SAMPLING_RATIO", 1),
			PprofEnabled:     v.flag("OBS_ENABLE_PPROF"),
			PprofUser:        v.str("SECURE_PPROF_BASIC_AUTH_USER", ""),
			PprofPass:        v.str("SECURE_PPROF_BASIC_AUTH_PASS", ""),
			HSTS:             v.flag("SECURE_HSTS"),
			ReadyTimeout:     time.Duration(v.integer("HEALTH_READY_TIMEOUT_MS", 500)) * time.Millisecond,
		},
	}

	if raw := v.str("DEFAULT_SHOP_ID", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("DEFAULT_SHOP_ID: %w", err)
		}
		cfg.DefaultShopID = id
	}

	switch {
	case cfg.DatabaseURL == "":
		return nil, errors.New("DATABASE_URL is required")
	case cfg.RedisURL == "":
		return nil, errors.New("REDIS_URL is required")
	case cfg.CodeApplyMax <= 0:
		return nil, errors.New("RATE_LIMIT_CODE_MAX must be positive")
	}
	return cfg, nil
}

// HTTPAddr returns the listen address, accepting PORT as "8080" or ":8080".
func (c *Config) HTTPAddr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

// TokensEnabled reports whether customer bearer tokens can be verified.
func (c *Config) TokensEnabled() bool {
	return c.JWTSecret != ""
}

// vars reads trimmed values from koanf. Unparseable values fall back to the
// default rather than failing startup.
type vars struct{ k *koanf.Koanf }

func (v vars) str(key, fallback string) string {
	if s := strings.TrimSpace(v.k.String(key)); s != "" {
		return s
	}
	return fallback
}

func (v vars) list(key string) []string {
	var out []string
	for _, part := range strings.Split(v.k.String(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (v vars) duration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(v.str(key, "")); err == nil {
		return d
	}
	return fallback
}

func (v vars) integer(key string, fallback int) int {
	if n, err := strconv.Atoi(v.str(key, "")); err == nil {
		return n
	}
	return fallback
}

func (v vars) float(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(v.str(key, ""), 64); err == nil {
		return f
	}
	return fallback
}

func (v vars) flag(key string) bool { return v.flagOr(key, false) }

func (v vars) flagOr(key string, fallback bool) bool {
	switch strings.ToLower(v.str(key, "")) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	}
	return fallback
}
