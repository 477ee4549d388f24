package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port             string        `env:"PORT"`
	MatchServiceURL  string        `env:"MATCH_SERVICE_URL"`
	MatchTimeout     time.Duration `env:"MATCH_TIMEOUT"`
	ReportMaxElapsed time.Duration `env:"REPORT_MAX_ELAPSED"`
	DiceSeed         int64         `env:"DICE_SEED"`
	LogLevel         string        `env:"LOG_LEVEL"`
	LogFormat        string        `env:"LOG_FORMAT"`

	MatchsvcPort       string `env:"MATCHSVC_PORT"`
	MatchsvcScoreToWin int    `env:"MATCHSVC_SCORE_TO_WIN"`
	MatchsvcRosterPath string `env:"MATCHSVC_ROSTER_PATH"`

	DatabaseURL              string `env:"DATABASE_URL"`
	DBMaxOpenConns           int    `env:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `env:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeSeconds int    `env:"DB_CONN_MAX_LIFETIME_SECONDS"`
	DBConnMaxIdleTimeSeconds int    `env:"DB_CONN_MAX_IDLE_SECONDS"`
}

func Default() Config {
	return Config{
		Port:                     "8080",
		MatchServiceURL:          "http://localhost:8000",
		MatchTimeout:             5 * time.Second,
		ReportMaxElapsed:         15 * time.Second,
		LogLevel:                 "info",
		LogFormat:                "console",
		MatchsvcPort:             "8000",
		MatchsvcScoreToWin:       20,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

// Load overlays environment variables on Default. Unset variables keep their
// default; set but unparseable variables are an error.
func Load() (Config, error) {
	cfg := Default()
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.MatchsvcScoreToWin <= 0 {
		return Config{}, fmt.Errorf("MATCHSVC_SCORE_TO_WIN must be positive, got %d", cfg.MatchsvcScoreToWin)
	}
	if cfg.MatchTimeout < 0 {
		return Config{}, fmt.Errorf("MATCH_TIMEOUT must not be negative, got %s", cfg.MatchTimeout)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
