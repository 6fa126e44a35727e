package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds LLM provider configuration. Field tags are read by
// github.com/caarlos0/env relative to the application prefix.
type Config struct {
	// Provider selects the backend: anthropic, openai, openrouter, gemini
	// or mock. Empty means discover from well-known API key variables.
	Provider string `env:"LLM_PROVIDER"`

	Anthropic  AnthropicConfig  `envPrefix:"ANTHROPIC_"`
	OpenAI     OpenAIConfig     `envPrefix:"OPENAI_"`
	OpenRouter OpenAIConfig     `envPrefix:"OPENROUTER_"`
	Gemini     GeminiConfig     `envPrefix:"GEMINI_"`
	Retry      RetryConfig      `envPrefix:"LLM_RETRY_"`

	// Timeout bounds a single logical request including retries.
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"claude-haiku"`
	BaseURL string `env:"BASE_URL"`
}

// OpenAIConfig configures OpenAI and OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL"`
	BaseURL string `env:"BASE_URL"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"gemini-flash"`
	BaseURL string `env:"BASE_URL"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	InitialWait time.Duration `env:"INITIAL_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"MULTIPLIER" envDefault:"2"`
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// DefaultConfig mirrors the envDefault tags for callers that build a
// Config by hand.
func DefaultConfig() Config {
	return Config{
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		OpenRouter: OpenAIConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// WithDefaults fills model names and base URLs left empty by the
// environment.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = def.OpenAI.Model
	}
	if c.OpenRouter.Model == "" {
		c.OpenRouter.Model = def.OpenRouter.Model
	}
	if c.OpenRouter.BaseURL == "" {
		c.OpenRouter.BaseURL = def.OpenRouter.BaseURL
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = def.Anthropic.Model
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = def.Gemini.Model
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = def.Retry
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// Discover picks a provider when none was configured, probing the
// prefixed keys first and then the vendors' standard variables in the
// order Anthropic, OpenAI, Gemini, OpenRouter. It reports false when no
// key is available.
func (c Config) Discover() (Config, bool) {
	if c.Provider != "" {
		return c, true
	}
	probes := []struct {
		provider string
		key      *string
		std      string
	}{
		{"anthropic", &c.Anthropic.APIKey, "ANTHROPIC_API_KEY"},
		{"openai", &c.OpenAI.APIKey, "OPENAI_API_KEY"},
		{"gemini", &c.Gemini.APIKey, "GEMINI_API_KEY"},
		{"openrouter", &c.OpenRouter.APIKey, "OPENROUTER_API_KEY"},
	}
	for _, p := range probes {
		if *p.key != "" {
			c.Provider = p.provider
			return c, true
		}
	}
	for _, p := range probes {
		if k := os.Getenv(p.std); k != "" {
			*p.key = k
			c.Provider = p.provider
			return c, true
		}
	}
	return c, false
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "mock":
		return nil
	case "":
		return fmt.Errorf("no LLM provider configured")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("an API key is required for the %s provider", c.Provider)
	}
	return nil
}
