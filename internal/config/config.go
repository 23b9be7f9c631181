package config

import (
	"errors"
	"os"
	"strings"
)

type Config struct {
	HTTPAddr      string
	DatabaseDSN   string
	AppEnv        string
	EnableMetrics bool
	EnableCORS    bool
	CORSOrigins   []string
}

func Load() *Config {
	config := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:   os.Getenv("DB_DSN"),
		AppEnv:        getEnv("APP_ENV", "development"),
		EnableMetrics: os.Getenv("ENABLE_METRICS") == "true",
		EnableCORS:    os.Getenv("ENABLE_CORS") == "true",
	}

	origins := getEnv("CORS_ORIGINS", "http://localhost:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			config.CORSOrigins = append(config.CORSOrigins, o)
		}
	}

	return config
}

func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR cannot be empty")
	}
	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		return errors.New("CORS_ORIGINS is required when ENABLE_CORS is true")
	}
	return nil
}

func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
