package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings the CLI reads from the environment
type Config struct {
	// API Configuration
	API APIConfig

	// Credentials used by login when no flags are given (CI/CD)
	Credentials CredentialsConfig

	// Logging Configuration
	Logging LoggingConfig

	// ConfigDir holds the user config file and the session cache
	ConfigDir string
}

// APIConfig holds API connection settings
type APIConfig struct {
	URL     string // overrides the server chosen from pixelshop.yaml
	Timeout time.Duration
}

// CredentialsConfig holds optional login credentials
type CredentialsConfig struct {
	Email    string
	Password string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout := 30 * time.Second
	if raw := os.Getenv("PIXELSHOP_HTTP_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PIXELSHOP_HTTP_TIMEOUT %q: %w", raw, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("invalid PIXELSHOP_HTTP_TIMEOUT %q: must be positive", raw)
		}
		timeout = parsed
	}

	// Logging configuration - quiet by default, the CLI prints its own output
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	configDir := os.Getenv("PIXELSHOP_CONFIG_DIR")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "pixelshop")
	}

	return &Config{
		API: APIConfig{
			URL:     os.Getenv("PIXELSHOP_API_URL"),
			Timeout: timeout,
		},
		Credentials: CredentialsConfig{
			Email:    os.Getenv("PIXELSHOP_EMAIL"),
			Password: os.Getenv("PIXELSHOP_PASSWORD"),
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		ConfigDir: configDir,
	}, nil
}
