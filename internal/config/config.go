// Package config loads the application configuration: a config.yaml
// in the config directory, with environment variables taking
// precedence for addresses and secrets.
package config

import (
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config is the top-level configuration.
type Config struct {
	Addr         string `yaml:"addr"`
	ConfigDir    string `yaml:"-"`
	ContextLimit int    `yaml:"context_limit"` // QA passage byte budget
	Pdftotext    string `yaml:"pdftotext"`     // binary override

	AI AIConfig `yaml:"ai"`
}

// AIConfig selects and configures the QA model. The timeout is kept
// in whole seconds since yaml.v2 cannot decode duration strings.
type AIConfig struct {
	Provider       string `yaml:"provider"` // "huggingface" or "anthropic"
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"` // model name (anthropic) or endpoint URL (huggingface)
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout is the request timeout for model calls.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Load reads config.yaml from dir if present and applies env
// overrides. A missing file is fine; defaults apply.
func Load(dir string) (*Config, error) {
	c := &Config{
		Addr:         ":8080",
		ConfigDir:    dir,
		ContextLimit: 1800,
		AI: AIConfig{
			Provider:       "huggingface",
			TimeoutSeconds: 45,
		},
	}

	fpath := path.Join(dir, "config.yaml")
	if data, err := os.ReadFile(fpath); err == nil {
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config at %v", fpath)
		}
	}

	c.Addr = getEnv("ADDR", c.Addr)
	c.ContextLimit = getEnvAsInt("QA_CONTEXT_LIMIT", c.ContextLimit)
	c.Pdftotext = getEnv("PDFTOTEXT", c.Pdftotext)
	c.AI.Provider = getEnv("AI_PROVIDER", c.AI.Provider)
	c.AI.Model = getEnv("AI_MODEL", c.AI.Model)
	c.AI.TimeoutSeconds = getEnvAsInt("AI_TIMEOUT_SECONDS", c.AI.TimeoutSeconds)
	c.ResolveAPIKey()
	return c, nil
}

// ResolveAPIKey reads the API key env var matching the current
// provider. Callers that change the provider after Load (the -ai
// flag) must call this again so the right key is picked up.
func (c *Config) ResolveAPIKey() {
	switch c.AI.Provider {
	case "anthropic":
		c.AI.APIKey = getEnv("ANTHROPIC_API_KEY", c.AI.APIKey)
	default:
		c.AI.APIKey = getEnv("HF_API_TOKEN", c.AI.APIKey)
	}
}

// StorePath is where the bolt file lives.
func (c *Config) StorePath() string {
	return path.Join(c.ConfigDir, "analyzer.db")
}

// KeywordsPath is the optional seed keyword override file.
func (c *Config) KeywordsPath() string {
	return path.Join(c.ConfigDir, "keywords.yaml")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
