package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with TODO_STORE.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Server    Server
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Store     string

	// problems collects values that could not be parsed; defaults were used.
	problems []error
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Debug          bool
	RequestTimeout time.Duration
}

// MongoConfig locates the document store.
type MongoConfig struct {
	URL            string
	Database       string
	Collection     string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// RedisConfig configures the optional Redis client. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig sets the per-client-IP request budget.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	var cfg Config

	cfg.Server = Server{
		Addr:           envOr("TODO_ADDR", ":3001"),
		Debug:          strings.EqualFold(os.Getenv("DEBUG"), "true"),
		RequestTimeout: cfg.duration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
	}

	mongoURL := envOr("MONGODB_URL", "mongodb://localhost:27017/todo")
	poolSize := cfg.integer("MONGODB_MAX_POOL_SIZE", 100)
	if poolSize < 0 {
		cfg.problems = append(cfg.problems, fmt.Errorf("MONGODB_MAX_POOL_SIZE: %d is negative", poolSize))
		poolSize = 100
	}
	cfg.Mongo = MongoConfig{
		URL:            mongoURL,
		Database:       databaseName(mongoURL, envOr("MONGODB_DATABASE", "todo")),
		Collection:     envOr("TODO_COLLECTION", "todo_lists"),
		MaxPoolSize:    uint64(poolSize),
		ConnectTimeout: cfg.duration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}

	cfg.RateLimit = RateLimitConfig{
		RequestsPerMinute: cfg.integer("RATE_LIMIT_PER_MINUTE", 600),
	}

	cfg.Store = strings.ToLower(envOr("TODO_STORE", StoreMongo))
	return cfg
}

// Validate reports unparseable values and settings that cannot work.
func (c Config) Validate() error {
	errs := append([]error(nil), c.problems...)
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("TODO_ADDR must not be empty"))
	}
	switch c.Store {
	case StoreMongo:
		if c.Mongo.Database == "" {
			errs = append(errs, errors.New("no database in MONGODB_URL or MONGODB_DATABASE"))
		}
		if c.Mongo.Collection == "" {
			errs = append(errs, errors.New("TODO_COLLECTION must not be empty"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("TODO_STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	return errors.Join(errs...)
}

// databaseName returns the database named in the URL path, else fallback.
func databaseName(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) integer(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Errorf("%s: %q is not an integer", key, raw))
		return fallback
	}
	return n
}

func (c *Config) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		c.problems = append(c.problems, fmt.Errorf("%s: %q is not a positive duration", key, raw))
		return fallback
	}
	return d
}
