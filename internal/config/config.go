package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port             string   `env:"PORT" envDefault:"3001"`
	OriginPatterns   []string `env:"ORIGIN_PATTERNS" envSeparator:","`
	ChatHistoryLimit int      `env:"CHAT_HISTORY_LIMIT" envDefault:"50"`
}

// Load reads a local .env if present, then parses the environment. A missing
// .env is the normal production case, not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
