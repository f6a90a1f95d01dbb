package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// MinJWTSecretLen is the shortest accepted HS256 signing secret
const MinJWTSecretLen = 32

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per request deadline (ex: 15s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile   string // optional, rotate logs into this file instead of stderr

	Store      string // "redis" | "sqlite" | "memory"
	SQLitePath string // database file when Store == "sqlite"

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
	ToggleMaxRetries      int           // optimistic retries of a habit toggle

	// Auth
	JWTSecret string        // HS256 signing key, >= 32 bytes
	TokenTTL  time.Duration // session token lifetime
	ResetTTL  time.Duration // password reset token lifetime
	ResetURL  string        // link sent by mail, the token is appended as ?token=

	// Mail
	MailSender string // SES source address; empty => reset mails are only logged
	AWSRegion  string

	// Seeding
	SeedEnabled bool
	SeedFile    string // optional YAML overriding the embedded starter data

	// Prompt
	GenAIAPIKey      string        // empty => prompt backend disabled, always fallback
	GenAIModel       string        // ex: "gemini-2.0-flash"
	PromptTimeout    time.Duration // deadline of one generation call
	PromptMaxEntries int           // entries fed to the prompt when the client sends none

	JanitorInterval time.Duration // interval between compactions (0 => disabled)

	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict /infra to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	CORSOrigins    []string // optional, origins allowed by the CORS middleware ("*" allowed)
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	AuthRateBurst  int      // token bucket size of the auth routes, per client IP
	AuthRatePerMin int      // refill rate of the auth routes, per client IP
}

// Load reads the configuration from the environment. A .env file (or the
// one named by SERENE_ENV_FILE) is loaded first when present; variables
// already set in the environment win.
func Load() *Config {
	loadDotEnv(getenv("SERENE_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SERENE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SERENE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SERENE_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("SERENE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SERENE_PRETTY_LOG", true),
		LogFile:   getenv("SERENE_LOG_FILE", ""),

		// Storage
		Store:            strings.ToLower(getenv("SERENE_STORE", StoreRedis)),
		SQLitePath:       getenv("SERENE_SQLITE_PATH", "/data/serene.db"),
		ToggleMaxRetries: getenvInt("SERENE_TOGGLE_MAX_RETRIES", 10),

		// Auth
		JWTSecret: requireEnv("SERENE_JWT_SECRET"),
		TokenTTL:  mustDuration("SERENE_TOKEN_TTL", 7*24*time.Hour),
		ResetTTL:  mustDuration("SERENE_RESET_TTL", time.Hour),
		ResetURL:  getenv("SERENE_RESET_URL", "http://localhost:8080/reset-password"),

		// Mail
		MailSender: getenv("SERENE_MAIL_SENDER", ""),
		AWSRegion:  getenv("SERENE_AWS_REGION", "eu-west-1"),

		// Seeding
		SeedEnabled: mustBool("SERENE_SEED_ENABLED", true),
		SeedFile:    getenv("SERENE_SEED_FILE", ""),

		// Prompt
		GenAIAPIKey:      getenv("SERENE_GENAI_API_KEY", ""),
		GenAIModel:       getenv("SERENE_GENAI_MODEL", "gemini-2.0-flash"),
		PromptTimeout:    mustDuration("SERENE_PROMPT_TIMEOUT", 10*time.Second),
		PromptMaxEntries: getenvInt("SERENE_PROMPT_MAX_ENTRIES", 5),

		JanitorInterval: mustDuration("SERENE_JANITOR_INTERVAL", 6*time.Hour),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("SERENE_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrim(getenv("SERENE_ALLOWED_CIDRS", "")),
		CORSOrigins:    splitAndTrim(getenv("SERENE_CORS_ORIGINS", "")),
		TrustProxy:     mustBool("SERENE_TRUST_PROXY", false),
		AuthRateBurst:  getenvInt("SERENE_AUTH_RATE_BURST", 10),
		AuthRatePerMin: getenvInt("SERENE_AUTH_RATE_PER_MIN", 30),
	}

	if len(cfg.JWTSecret) < MinJWTSecretLen {
		panic(fmt.Sprintf("❌ FATAL: SERENE_JWT_SECRET must be at least %d bytes", MinJWTSecretLen))
	}

	switch cfg.Store {
	case StoreRedis:
		loadRedis(cfg)
	case StoreSQLite, StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: SERENE_STORE must be one of redis, sqlite, memory (got %q)", cfg.Store))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// loadRedis fills the Redis settings, which are only read when Redis is the
// selected backend.
func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("SERENE_REDIS_ADDR")
	cfg.RedisUser = getenv("SERENE_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("SERENE_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("SERENE_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("SERENE_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("SERENE_REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("SERENE_REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("SERENE_REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("SERENE_REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("SERENE_REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("SERENE_REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("SERENE_REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("SERENE_REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("SERENE_REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SERENE_REDIS_PASSWORD is required when SERENE_REDIS_PASSWORD_REQUIRED=true")
	}
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() Config {
	cp := *c
	const hidden = "***REDACTED***"
	cp.JWTSecret = hidden
	if cp.RedisPassword != "" {
		cp.RedisPassword = hidden
	}
	if cp.RedisUser != "" {
		cp.RedisUser = hidden
	}
	if cp.GenAIAPIKey != "" {
		cp.GenAIAPIKey = hidden
	}
	return cp
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: cannot read env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
