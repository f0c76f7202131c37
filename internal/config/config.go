package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"pixsort/internal/costtracker"
)

// Provider names accepted in classifier.provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

type Config struct {
	Folders struct {
		Intake string `mapstructure:"intake"` // directory scanned for unsorted images
		Output string `mapstructure:"output"` // root the category folders live under
	} `mapstructure:"folders"`

	Classifier struct {
		Provider         string        `mapstructure:"provider"` // "openrouter" or "gemini"
		Model            string        `mapstructure:"model"`
		BaseURL          string        `mapstructure:"base_url"` // OpenRouter only
		OpenrouterApiKey string        `mapstructure:"openrouter_api_key"`
		GeminiApiKey     string        `mapstructure:"gemini_api_key"`
		PromptTemplate   string        `mapstructure:"prompt_template"` // path to prompt template file, optional
		RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"classifier"`

	History struct {
		DBPath string `mapstructure:"db_path"`
	} `mapstructure:"history"`

	// Pricing: map[model] = per-token USD rates, used for the run cost summary.
	Pricing map[string]costtracker.PricingInfo `mapstructure:"pricing"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".") // Look for config.yaml in the current directory

	viper.SetDefault("folders.intake", "in")
	viper.SetDefault("folders.output", "sorted")
	viper.SetDefault("classifier.provider", ProviderOpenRouter)
	viper.SetDefault("classifier.model", "mistralai/mistral-small-3.2-24b-instruct:free")
	viper.SetDefault("classifier.base_url", DefaultBaseURL)
	viper.SetDefault("classifier.request_timeout", 2*time.Minute)
	viper.SetDefault("history.db_path", "pixsort-history.db")

	viper.AutomaticEnv()
	// Credentials come from the config file or the process environment;
	// these bindings let the plain env var names work without a prefix.
	viper.BindEnv("classifier.openrouter_api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("classifier.gemini_api_key", "GEMINI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		// Running without a config file is fine, env vars and defaults cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
