package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	if c.Folders.Intake == "" {
		return errors.New("folders.intake is required")
	}
	if c.Folders.Output == "" {
		return errors.New("folders.output is required")
	}
	if c.Folders.Intake == c.Folders.Output {
		return errors.New("folders.intake and folders.output must differ")
	}

	if c.Classifier.Model == "" {
		return errors.New("classifier.model is required")
	}
	if c.Classifier.RequestTimeout < 0 {
		return errors.New("classifier.request_timeout must not be negative")
	}

	switch c.Classifier.Provider {
	case ProviderOpenRouter:
		if c.Classifier.OpenrouterApiKey == "" {
			return errors.New("classifier.openrouter_api_key is required (set OPENROUTER_API_KEY or add it to config.yaml)")
		}
	case ProviderGemini:
		if c.Classifier.GeminiApiKey == "" {
			return errors.New("classifier.gemini_api_key is required (set GEMINI_API_KEY or add it to config.yaml)")
		}
	default:
		return fmt.Errorf("classifier.provider must be %q or %q, got %q",
			ProviderOpenRouter, ProviderGemini, c.Classifier.Provider)
	}

	if c.History.DBPath == "" {
		return errors.New("history.db_path is required")
	}

	for model, price := range c.Pricing {
		if model == "" {
			return errors.New("pricing contains an empty model name")
		}
		if price.InputPerToken < 0 || price.OutputPerToken < 0 {
			return fmt.Errorf("pricing for model '%s' has negative token cost", model)
		}
	}

	return nil
}
