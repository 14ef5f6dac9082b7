package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the scheduler.
type Config struct {
	DatabasePath      string
	BusyTimeout       time.Duration
	LogLevel          slog.Level
	LogFormat         string
	LobbyURL          string
	ZoneCacheSize     int
	DirectoryCacheTTL time.Duration
	SaveAttempts      int
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		DatabasePath:      "scheduler.db",
		BusyTimeout:       5 * time.Second,
		LogLevel:          slog.LevelInfo,
		LogFormat:         "text",
		LobbyURL:          "https://lobby.example.com/session/upcoming",
		ZoneCacheSize:     64,
		DirectoryCacheTTL: 30 * time.Second,
		SaveAttempts:      3,
	}
}

// Load parses configuration values from the current process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadWithDotEnv reads path as a .env file and layers it under the process
// environment: variables already set win over the file. A missing file is
// not an error.
func LoadWithDotEnv(path string) (Config, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		values = nil
	}
	return LoadFrom(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	})
}

// LoadFrom parses configuration values through lookup. Every invalid value
// is reported, not just the first.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	invalid := make([]string, 0, 2)

	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if path := get("SCHEDULER_DB_PATH"); path != "" {
		cfg.DatabasePath = path
	}

	if value := get("SCHEDULER_DB_BUSY_TIMEOUT"); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout < 0 {
			invalid = append(invalid, "SCHEDULER_DB_BUSY_TIMEOUT")
		} else {
			cfg.BusyTimeout = timeout
		}
	}

	if value := get("SCHEDULER_LOG_LEVEL"); value != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, "SCHEDULER_LOG_LEVEL")
		}
	}

	if value := strings.ToLower(get("SCHEDULER_LOG_FORMAT")); value != "" {
		if value != "text" && value != "json" {
			invalid = append(invalid, "SCHEDULER_LOG_FORMAT")
		} else {
			cfg.LogFormat = value
		}
	}

	if value := get("SCHEDULER_LOBBY_URL"); value != "" {
		u, err := url.Parse(value)
		if err != nil || !u.IsAbs() || u.Host == "" {
			invalid = append(invalid, "SCHEDULER_LOBBY_URL")
		} else {
			cfg.LobbyURL = value
		}
	}

	if value := get("SCHEDULER_ZONE_CACHE_SIZE"); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			invalid = append(invalid, "SCHEDULER_ZONE_CACHE_SIZE")
		} else {
			cfg.ZoneCacheSize = size
		}
	}

	if value := get("SCHEDULER_DIRECTORY_CACHE_TTL"); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SCHEDULER_DIRECTORY_CACHE_TTL")
		} else {
			cfg.DirectoryCacheTTL = ttl
		}
	}

	if value := get("SCHEDULER_SAVE_ATTEMPTS"); value != "" {
		attempts, err := strconv.Atoi(value)
		if err != nil || attempts <= 0 {
			invalid = append(invalid, "SCHEDULER_SAVE_ATTEMPTS")
		} else {
			cfg.SaveAttempts = attempts
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}
