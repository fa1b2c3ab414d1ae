// Package config assembles the service configuration from an optional .env
// file, the environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Port         string
	DBPath       string
	DatabaseURL  string
	JWTSecret    string
	SessionTTL   time.Duration
	CookieDomain string
	CookieSecure bool
	Origins      []string
	LogLevel     slog.Level
	SQLDebug     bool
}

// Default allowed origins for development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads envFile if it exists, then the environment, then args.
func Load(envFile string, args []string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:         getenv("PORT", "8080"),
		DBPath:       getenv("DB_PATH", "db/roster.sqlite"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		Origins:      origins(),
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getenv("SESSION_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getenv("COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
	}

	logLevel := getenv("LOG_LEVEL", "info")

	flags := pflag.NewFlagSet("roster", pflag.ContinueOnError)
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path of the sqlite database file")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres DSN, replaces --db when set")
	flags.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "lifetime of a login session")
	flags.StringVar(&logLevel, "log-level", logLevel, "log level: debug, info, warn or error")
	flags.BoolVar(&cfg.SQLDebug, "sql-debug", false, "log every SQL statement")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session lifetime must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func origins() []string {
	list := make([]string, len(defaultOrigins))
	copy(list, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		list = append(list, clientURL)
	}

	if allowed := os.Getenv("ALLOWED_ORIGINS"); allowed != "" {
		for _, origin := range strings.Split(allowed, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				list = append(list, trimmed)
			}
		}
	}

	return list
}
