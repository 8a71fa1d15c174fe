package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv lets secrets live outside the config file.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("PROCESSING_BASE_URL")); v != "" {
		cfg.Processing.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PROCESSING_API_KEY")); v != "" {
		cfg.Processing.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_PASSWORD")); v != "" {
		cfg.Redis.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEYS")); v != "" {
		cfg.Gemini.APIKeys = splitAndClean(v)
	}
	if v := strings.TrimSpace(os.Getenv("LECTURELINK_USER_ID")); v != "" {
		cfg.Auth.UserID = v
	}
}

func splitAndClean(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
