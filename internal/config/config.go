// Package config loads runtime settings from the environment. Values may
// also come from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/abhisek/cybersage/internal/llm"
	"github.com/abhisek/cybersage/internal/questions"
)

// Prefix is prepended to every variable name.
const Prefix = "CYBERSAGE_"

// Config holds all application settings.
type Config struct {
	DB      string `env:"DB"`
	LogMode string `env:"LOG_MODE" envDefault:"development"`
	LogFile string `env:"LOG_FILE"`

	LearnerName string `env:"LEARNER_NAME"`

	QuestionSource string        `env:"QUESTION_SOURCE" envDefault:"auto"`
	APIBaseURL     string        `env:"API_BASE_URL"`
	APIToken       string        `env:"API_TOKEN"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	RedisURL       string        `env:"REDIS_URL"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	QuestionCount  int `env:"QUESTION_COUNT" envDefault:"5"`
	HintCost       int `env:"HINT_COST" envDefault:"5"`
	StartingPoints int `env:"STARTING_POINTS" envDefault:"10"`

	LLM llm.Config
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return parse(env.Options{Prefix: Prefix})
}

// FromMap parses settings from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if _, err := questions.ParseMode(c.QuestionSource); err != nil {
		return err
	}
	if c.QuestionCount <= 0 {
		return fmt.Errorf("question count must be positive, got %d", c.QuestionCount)
	}
	if c.HintCost < 0 {
		return fmt.Errorf("hint cost must not be negative, got %d", c.HintCost)
	}
	if c.StartingPoints < 0 {
		return fmt.Errorf("starting points must not be negative, got %d", c.StartingPoints)
	}
	return nil
}

// SourceMode returns the parsed question source mode.
func (c *Config) SourceMode() questions.Mode {
	m, _ := questions.ParseMode(c.QuestionSource)
	return m
}
