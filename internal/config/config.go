// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config carries everything the web process needs at startup.
type Config struct {
	Environment string `env:"IMPORTS_WEB_ENV" envDefault:"development"`
	Addr        string `env:"IMPORTS_WEB_ADDR"`
	Port        string `env:"PORT" envDefault:"8080"`

	TemplatesDir string `env:"IMPORTS_WEB_TEMPLATES_DIR" envDefault:"templates"`
	PublicDir    string `env:"IMPORTS_WEB_PUBLIC_DIR" envDefault:"public"`
	ContentDir   string `env:"IMPORTS_WEB_CONTENT_DIR" envDefault:"content"`

	LogLevel string `env:"IMPORTS_WEB_LOG_LEVEL" envDefault:"info"`

	SessionSigningKey string `env:"IMPORTS_WEB_SESSION_SIGNING_KEY"`

	API      API      `envPrefix:"IMPORTS_WEB_API_"`
	Paystack Paystack `envPrefix:"PAYSTACK_"`
}

// API configures the backend REST client.
type API struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://london-imports-api.onrender.com/api/v1"`
	Timeout int    `env:"TIMEOUT_SECONDS" envDefault:"15"`
}

// Paystack configures the inline payment popup.
type Paystack struct {
	PublicKey string `env:"PUBLIC_KEY"`
	Currency  string `env:"CURRENCY" envDefault:"GHS"`
	ScriptURL string `env:"SCRIPT_URL" envDefault:"https://js.paystack.co/v1/inline.js"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":" + cfg.Port
	}
	return cfg, nil
}

// IsProduction reports whether the process runs with production hardening.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
