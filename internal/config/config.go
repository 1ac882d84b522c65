package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"magic-counter/internal/constants"
)

type Config struct {
	DBPath        string
	ServerPort    string
	LogLevel      string
	CardAPIURL    string
	DebounceDelay time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "magic-counter.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CardAPIURL:    getEnv("CARD_API_URL", "https://api.scryfall.com"),
		DebounceDelay: constants.DebounceDelay,
	}

	if raw := os.Getenv("DEBOUNCE_MS"); raw != "" {
		if d, err := time.ParseDuration(raw + "ms"); err == nil && d > 0 {
			cfg.DebounceDelay = d
		} else {
			logger.Warn().Str("debounce_ms", raw).Msg("ignoring invalid DEBOUNCE_MS")
		}
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("card_api_url", cfg.CardAPIURL).
		Dur("debounce_delay", cfg.DebounceDelay).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
