package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv             string
	Port               string
	LogLevel           string
	LogFormat          string
	SnapshotLimit      int
	MaxFrameBytes      int64
	BasketballSportIDs []string
	MaxFrontendClients int
	MaxConnsPerIP      int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8777"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.SnapshotLimit, err = getEnvInt("SNAPSHOT_LIMIT", 250); err != nil {
		return nil, err
	}
	if cfg.SnapshotLimit <= 0 {
		return nil, fmt.Errorf("SNAPSHOT_LIMIT must be positive")
	}

	maxFrame, err := getEnvInt("MAX_FRAME_BYTES", 8_000_000)
	if err != nil {
		return nil, err
	}
	if maxFrame <= 0 {
		return nil, fmt.Errorf("MAX_FRAME_BYTES must be positive")
	}
	cfg.MaxFrameBytes = int64(maxFrame)

	if cfg.MaxFrontendClients, err = getEnvInt("MAX_FRONTEND_CLIENTS", 0); err != nil {
		return nil, err
	}
	if cfg.MaxFrontendClients < 0 {
		return nil, fmt.Errorf("MAX_FRONTEND_CLIENTS must not be negative")
	}

	if cfg.MaxConnsPerIP, err = getEnvInt("MAX_CONNS_PER_IP", 0); err != nil {
		return nil, err
	}
	if cfg.MaxConnsPerIP < 0 {
		return nil, fmt.Errorf("MAX_CONNS_PER_IP must not be negative")
	}

	// The taxonomy-id-to-sport mapping is observed feed behavior, not a
	// documented contract, so it stays configurable.
	cfg.BasketballSportIDs = splitList(getEnv("BASKETBALL_SPORT_IDS", "2,3"))
	if len(cfg.BasketballSportIDs) == 0 {
		return nil, fmt.Errorf("BASKETBALL_SPORT_IDS must list at least one taxonomy id")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
