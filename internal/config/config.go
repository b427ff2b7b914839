package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Identity service
	IdentityURL    string
	IdentitySecret string
	TokenIssuer    string
	TokenAudience  string

	// Server
	Port        string
	CORSOrigins []string
	Env         string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		IdentityURL:    getEnv("IDENTITY_URL", ""),
		IdentitySecret: getEnv("IDENTITY_SECRET", ""),
		TokenIssuer:    getEnv("TOKEN_ISSUER", "finko-identity"),
		TokenAudience:  getEnv("TOKEN_AUDIENCE", "finko-api"),
		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:            getEnv("ENV", "development"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IdentityURL == "" {
		return fmt.Errorf("IDENTITY_URL is required")
	}
	if c.IdentitySecret == "" {
		return fmt.Errorf("IDENTITY_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
