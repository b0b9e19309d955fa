package config

import (
	"fmt"
	"time"

	"misfit-alliance/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	AIAPIKey         string        `env:"AI_API_KEY"`
	AIBaseURL        string        `env:"AI_BASE_URL"         envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	AIModel          string        `env:"AI_MODEL"            envDefault:"doubao-seed-1-8-251228"`
	DBPath           string        `env:"DB_PATH"             envDefault:"misfit.db"`
	ServerPort       string        `env:"SERVER_PORT"         envDefault:"8080"`
	LogLevel         string        `env:"LOG_LEVEL"           envDefault:"info"`
	InitialHostility float64       `env:"INITIAL_HOSTILITY"   envDefault:"0.7"`
	MinPostsPerMatch int           `env:"MIN_POSTS_PER_MATCH" envDefault:"5"`
	DraftTTL         time.Duration `env:"DRAFT_TTL"           envDefault:"30m"`
}

// AIEnabled is false when no key is configured; collaborators then serve mock data.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != "" && c.AIAPIKey != "your_api_key_here"
}

func Load(log zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.InitialHostility < 0 {
		cfg.InitialHostility = 0
	}
	if cfg.InitialHostility > 1 {
		cfg.InitialHostility = 1
	}
	if cfg.MinPostsPerMatch < 0 {
		cfg.MinPostsPerMatch = 0
	}

	// .env may carry LOG_LEVEL, which the logger could not see at construction
	level := logger.SetLevel(cfg.LogLevel)

	if !cfg.AIEnabled() {
		log.Warn().Msg("AI_API_KEY not set, recognition and generation will use mock data")
	}

	log.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", level.String()).
		Str("ai_base_url", cfg.AIBaseURL).
		Str("ai_model", cfg.AIModel).
		Float64("initial_hostility", cfg.InitialHostility).
		Int("min_posts_per_match", cfg.MinPostsPerMatch).
		Dur("draft_ttl", cfg.DraftTTL).
		Msg("configuration loaded")

	return cfg, nil
}

var Module = fx.Provide(Load)
