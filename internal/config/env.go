package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are given).
// Missing files are skipped; variables already present in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return errorwrapper.WrapError(err, "failed to load .env file")
	}
	return nil
}

// ApplyEnvOverrides copies supported environment variables onto cfg.
// SCANCONSOLE_API_URL takes precedence over the legacy NEXT_PUBLIC_API_URL.
func ApplyEnvOverrides(cfg *GlobalConfig) error {
	if v := strings.TrimSpace(os.Getenv(EnvLegacyAPI)); v != "" {
		cfg.ScanAPIConfig.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.ScanAPIConfig.BaseURL = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvTimeoutSecs)); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return errorwrapper.NewValidationError(EnvTimeoutSecs, v, "must be an integer number of seconds")
		}
		cfg.ScanAPIConfig.TimeoutSecs = secs
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogConfig.LogLevel = v
	}

	return nil
}
