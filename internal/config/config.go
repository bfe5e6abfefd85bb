// Package config reads the service settings from flags, the environment
// and an optional .env file, in decreasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "BLOG_"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Addr     string
	DiagAddr string

	Store       string
	DatabaseDSN string

	RedisAddr     string
	TokenCacheTTL time.Duration

	Debug  bool
	Routes bool

	// Promote names a user to make staff; the process exits afterwards.
	Promote string
}

// Load parses args (without the program name). Values from a .env file in
// the working directory fill in unset environment variables.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var c Config
	fs := flag.NewFlagSet("blog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.Addr, "addr", getEnv("ADDR", ":3333"), "application address")
	fs.StringVar(&c.DiagAddr, "diag_addr", getEnv("DIAG_ADDR", ":9999"), "diagnostics address (metrics)")
	fs.StringVar(&c.DatabaseDSN, "dsn", getEnv("DATABASE_DSN", ""), "PostgreSQL DSN")
	fs.StringVar(&c.Store, "store", getEnv("STORE", ""), "storage backend: postgres or memory")
	fs.StringVar(&c.RedisAddr, "redis", getEnv("REDIS_ADDR", ""), "Redis address for the token cache, empty to disable")
	fs.DurationVar(&c.TokenCacheTTL, "token_cache_ttl", getEnvDuration("TOKEN_CACHE_TTL", 5*time.Minute), "token cache entry lifetime")
	fs.BoolVar(&c.Debug, "debug", getEnvBool("DEBUG", false), "development logging and SQL tracing")
	fs.BoolVar(&c.Routes, "routes", getEnvBool("ROUTES", false), "Generate router documentation")
	fs.StringVar(&c.Promote, "promote", "", "grant staff rights to the named user and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if c.Store == "" {
		c.Store = StoreMemory
		if c.DatabaseDSN != "" {
			c.Store = StorePostgres
		}
	}

	return c, c.validate()
}

func (c Config) validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseDSN == "" {
			return errors.New("postgres store needs a DSN (-dsn or " + envPrefix + "DATABASE_DSN)")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	if c.Promote != "" && c.Store != StorePostgres {
		return errors.New("-promote needs the postgres store")
	}
	if c.TokenCacheTTL <= 0 {
		return fmt.Errorf("token cache ttl must be positive, got %s", c.TokenCacheTTL)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}

	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}

	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}

	return v
}
