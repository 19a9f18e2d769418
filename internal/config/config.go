package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/api"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/db"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
	"github.com/joho/godotenv"
)

// StoreKind selects the rate store backend
type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreBadger StoreKind = "badger"
	StoreSQLite StoreKind = "sqlite"
)

type Config struct {
	APIURL      string
	HTTPTimeout time.Duration

	Store      StoreKind
	RatesFile  string
	BadgerDir  string
	SQLitePath string

	LogLevel logger.Level
	HTTPPort string
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Variables already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := Config{
		APIURL:      api.DefaultLatestRatesURL,
		HTTPTimeout: 10 * time.Second,
		Store:       StoreFile,
		RatesFile:   db.DefaultRatesFile,
		BadgerDir:   "data",
		SQLitePath:  "rates.db",
		LogLevel:    logger.InfoLevel,
		HTTPPort:    "8080",
	}

	if v := env("RATES_API_URL"); v != "" {
		cfg.APIURL = v
	}

	if v := env("RATES_HTTP_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Config{}, fmt.Errorf("RATES_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	if v := env("RATES_STORE"); v != "" {
		switch kind := StoreKind(strings.ToLower(v)); kind {
		case StoreFile, StoreBadger, StoreSQLite:
			cfg.Store = kind
		default:
			return Config{}, fmt.Errorf("RATES_STORE: unsupported backend %q (want file, badger or sqlite)", v)
		}
	}

	if v := env("RATES_FILE"); v != "" {
		cfg.RatesFile = v
	}
	if v := env("RATES_BADGER_DIR"); v != "" {
		cfg.BadgerDir = v
	}
	if v := env("RATES_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}

	level, err := logger.ParseLevel(env("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if v := env("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("PORT: invalid port %q", v)
		}
		cfg.HTTPPort = v
	}

	return cfg, nil
}

// parseTimeout accepts a Go duration ("5s") or a plain number of seconds
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		v = strconv.Itoa(secs) + "s"
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
