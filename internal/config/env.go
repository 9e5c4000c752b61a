package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment.
type EnvConfig struct {
	BaseURL  string `env:"MCDASH_BASE_URL"`
	Token    string `env:"MCDASH_API_TOKEN"`
	Timeout  string `env:"MCDASH_API_TIMEOUT"`
	LeadType string `env:"MCDASH_LEAD_TYPE"`
	LogLevel string `env:"MCDASH_LOG_LEVEL"`
}

// ParseEnv loads overrides from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file settings with every non-empty environment value.
func (c *FileConfig) ApplyEnv(e EnvConfig) {
	override := func(target **string, value string) {
		if value != "" {
			v := value
			*target = &v
		}
	}
	override(&c.API.BaseURL, e.BaseURL)
	override(&c.API.Token, e.Token)
	override(&c.API.Timeout, e.Timeout)
	override(&c.Dashboard.LeadType, e.LeadType)
	override(&c.Log.Level, e.LogLevel)
}

// Load reads the TOML file at path and applies environment overrides.
func Load(path string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	e, err := ParseEnv()
	if err != nil {
		return FileConfig{}, err
	}
	cfg.ApplyEnv(e)
	return cfg, nil
}
