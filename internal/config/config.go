package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultSecret = "dev-secret-change-me"

// Word sources.
const (
	WordsFromFile     = "file"
	WordsFromPostgres = "postgres"
)

// Session stores.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config describes all runtime settings for the server. It is loaded once in
// main and handed down explicitly.
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Format string // text|json
		Level  string // debug|info|warn|error
	}

	HTTP struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}

	Words struct {
		Source string // file|postgres
		File   string
		Import bool // copy File into Postgres at startup
	}

	Postgres struct {
		URL           string
		RunMigrations bool
		MigrationsDir string
	}

	Session struct {
		Store string // memory|redis
		TTL   time.Duration
	}

	Redis struct {
		Addr string
		DB   int
	}

	Auth struct {
		Secret   string
		TokenTTL time.Duration
	}
}

func LoadFromEnv() (Config, error) {
	var c Config
	env := &envReader{}

	c.Env = env.string("APP_ENV", "dev")
	c.Log.Format = env.string("LOG_FORMAT", "text")
	c.Log.Level = env.string("LOG_LEVEL", "info")

	port := env.string("PORT", "8080")
	c.HTTP.Addr = env.string("HTTP_ADDR", ":"+port)
	c.HTTP.ReadHeaderTimeout = env.duration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.ReadTimeout = env.duration("HTTP_READ_TIMEOUT", 0)
	c.HTTP.WriteTimeout = env.duration("HTTP_WRITE_TIMEOUT", 0)
	c.HTTP.IdleTimeout = env.duration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = env.duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	c.Words.Source = env.string("WORDS_SOURCE", WordsFromFile)
	c.Words.File = env.string("WORDS_FILE", "./words.txt")
	c.Words.Import = env.bool("WORDS_IMPORT", false)

	c.Postgres.URL = os.Getenv("DATABASE_URL")
	c.Postgres.RunMigrations = env.bool("RUN_MIGRATIONS", false)
	c.Postgres.MigrationsDir = env.string("MIGRATIONS_DIR", "./db/migrations")

	c.Session.Store = env.string("SESSION_STORE", StoreMemory)
	c.Session.TTL = env.duration("SESSION_TTL", 24*time.Hour)

	c.Redis.Addr = env.string("REDIS_ADDR", "localhost:6379")
	c.Redis.DB = env.int("REDIS_DB", 0)

	c.Auth.Secret = env.string("SESSION_SECRET", defaultSecret)
	c.Auth.TokenTTL = env.duration("TOKEN_TTL", 24*time.Hour)

	if err := env.err(); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}

	switch c.Words.Source {
	case WordsFromFile:
		if c.Words.File == "" {
			return errors.New("WORDS_FILE is empty")
		}
	case WordsFromPostgres:
		if c.Postgres.URL == "" {
			return errors.New("DATABASE_URL is required with WORDS_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unsupported WORDS_SOURCE=%q (want file|postgres)", c.Words.Source)
	}
	if c.Words.Import && c.Words.Source != WordsFromPostgres {
		return errors.New("WORDS_IMPORT needs WORDS_SOURCE=postgres")
	}
	if c.Postgres.RunMigrations && c.Postgres.URL == "" {
		return errors.New("RUN_MIGRATIONS needs DATABASE_URL")
	}

	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is empty")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE=%q (want memory|redis)", c.Session.Store)
	}

	if c.Auth.Secret == "" {
		return errors.New("SESSION_SECRET is empty")
	}
	if c.Env != "dev" && c.Auth.Secret == defaultSecret {
		return fmt.Errorf("refuse to run with default SESSION_SECRET in %s", c.Env)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL=%q (want debug|info|warn|error)", c.Log.Level)
	}
	return nil
}

// envReader reads variables with defaults and collects the ones that are
// set but do not parse.
type envReader struct {
	errs []error
}

func (r *envReader) string(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	return envParsed(r, key, def, time.ParseDuration)
}

func (r *envReader) bool(key string, def bool) bool {
	return envParsed(r, key, def, strconv.ParseBool)
}

func (r *envReader) int(key string, def int) int {
	return envParsed(r, key, def, strconv.Atoi)
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func envParsed[T any](r *envReader, key string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := parse(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, v, err))
		return def
	}
	return parsed
}
