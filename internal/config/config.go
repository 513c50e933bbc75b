package config

import (
	"ctchen222/tictactoe/internal/validator"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds process settings, read from TTT_* environment variables.
type Config struct {
	Addr          string        `validate:"required"`
	Mode          string        `validate:"oneof=2p ai"`
	Difficulty    string        `validate:"oneof=easy medium hard"`
	AIDelayMin    time.Duration `validate:"gte=0"`
	AIDelayJitter time.Duration `validate:"gte=0"`
	// Seed makes the computer's random choices reproducible; 0 means unseeded.
	Seed     uint64
	LogLevel string `validate:"oneof=debug info warn error"`

	OtelEnabled  bool
	OtelEndpoint string `validate:"required_if=OtelEnabled true"`
	OtelStdout   bool
}

// Default returns the settings used when no environment overrides are set.
func Default() Config {
	return Config{
		Addr:          ":8080",
		Mode:          "ai",
		Difficulty:    "hard",
		AIDelayMin:    350 * time.Millisecond,
		AIDelayJitter: 300 * time.Millisecond,
		LogLevel:      "info",
		OtelEndpoint:  "otel-collector:4317",
	}
}

// Load reads the environment on top of Default and validates the result.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("TTT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("TTT_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := getenv("TTT_DIFFICULTY"); v != "" {
		cfg.Difficulty = v
	}
	if v := getenv("TTT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("TTT_OTEL_ENDPOINT"); v != "" {
		cfg.OtelEndpoint = v
	}

	var err error
	if cfg.AIDelayMin, err = duration(getenv, "TTT_AI_DELAY_MIN", cfg.AIDelayMin); err != nil {
		return Config{}, err
	}
	if cfg.AIDelayJitter, err = duration(getenv, "TTT_AI_DELAY_JITTER", cfg.AIDelayJitter); err != nil {
		return Config{}, err
	}
	if v := getenv("TTT_SEED"); v != "" {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("failed to parse TTT_SEED: %w", err)
		}
	}
	if cfg.OtelEnabled, err = boolean(getenv, "TTT_OTEL_ENABLED", cfg.OtelEnabled); err != nil {
		return Config{}, err
	}
	if cfg.OtelStdout, err = boolean(getenv, "TTT_OTEL_STDOUT", cfg.OtelStdout); err != nil {
		return Config{}, err
	}

	if err := validator.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}

func boolean(getenv func(string) string, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return b, nil
}
