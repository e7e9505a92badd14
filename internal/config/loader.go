package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML config file, applies defaults, and overlays
// secrets from the environment (an optional .env file is honored).
func Load(path string) (*Config, error) {
	// Missing .env is fine, API keys may come from the real environment
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// OpenAIAPIKey returns the transcription provider credential.
func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// GeminiAPIKeys returns the summarizer credentials, comma separated in
// GEMINI_API_KEYS. Empty entries are dropped.
func GeminiAPIKeys() []string {
	raw := os.Getenv("GEMINI_API_KEYS")
	if raw == "" {
		return nil
	}

	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
