package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultPromptDir is the subdirectory within the user's home directory
// where prompt templates are looked up by bare filename.
const defaultPromptDir = ".config/pixsort/prompts"

// LoadPromptContent resolves the configured prompt template path and reads it.
//
// An absolute path is used directly. A relative path is treated as a filename
// under ~/.config/pixsort/prompts/. An empty path returns "", which makes the
// classifier fall back to its built-in template.
func LoadPromptContent(configuredPath string) (string, error) {
	if configuredPath == "" {
		return "", nil
	}

	finalPath := configuredPath
	if !filepath.IsAbs(configuredPath) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		finalPath = filepath.Join(homeDir, defaultPromptDir, configuredPath)
	}

	promptBytes, err := os.ReadFile(finalPath)
	if err != nil {
		if os.IsNotExist(err) && !filepath.IsAbs(configuredPath) {
			return "", fmt.Errorf("prompt file not found at '%s'; create it or set an absolute path in config.yaml: %w", finalPath, err)
		}
		return "", fmt.Errorf("failed to read prompt file '%s': %w", finalPath, err)
	}

	return string(promptBytes), nil
}
