package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// Remote LLM settings
	OpenAIAPIKey  string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string  `env:"OPENAI_BASE_URL"`
	OpenAIModel   string  `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	AIMaxTokens   int     `env:"AI_MAX_TOKENS" envDefault:"1000"`
	AITemperature float32 `env:"AI_TEMPERATURE" envDefault:"0.7"`

	// Local LLM settings
	UseLocalAI   bool   `env:"USE_LOCAL_AI" envDefault:"false"`
	OllamaURL    string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	LocalAIModel string `env:"LOCAL_AI_MODEL" envDefault:"llama3.2"`

	// WooCommerce settings
	WooCommerceURL    string `env:"WOOCOMMERCE_URL"`
	WooConsumerKey    string `env:"WOOCOMMERCE_CONSUMER_KEY"`
	WooConsumerSecret string `env:"WOOCOMMERCE_CONSUMER_SECRET"`

	// Storage
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"telegram_bot.db"`

	// Bot behaviour
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"fa"`
	SupportContact  string `env:"SUPPORT_CONTACT" envDefault:"@support"`

	// Dashboard
	DashboardAddr string `env:"DASHBOARD_ADDR" envDefault:":5000"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required variable at once so a broken
// deployment can be fixed in a single pass.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"TELEGRAM_BOT_TOKEN", c.TelegramBotToken},
		{"WOOCOMMERCE_URL", c.WooCommerceURL},
		{"WOOCOMMERCE_CONSUMER_KEY", c.WooConsumerKey},
		{"WOOCOMMERCE_CONSUMER_SECRET", c.WooConsumerSecret},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	// The remote key is only required when the local backend is off; with
	// USE_LOCAL_AI the remote key stays optional as a fallback.
	if !c.UseLocalAI && c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
