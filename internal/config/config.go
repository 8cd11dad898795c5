package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	SQLDatabase   DatabaseConfig `yaml:"sql_database"`   // SQLite for configs and schedules
	NoSQLDatabase DatabaseConfig `yaml:"nosql_database"` // MongoDB for evaluation runs
	Scorer        ScorerConfig   `yaml:"scorer"`
	CORSOrigin    string         `yaml:"cors_origin,omitempty"`
	LogLevel      string         `yaml:"log_level,omitempty"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Provider string            `yaml:"provider"` // sqlite, mongodb, memory
	URI      string            `yaml:"uri"`
	Database string            `yaml:"database"`
	Options  map[string]string `yaml:"options,omitempty"`
}

// ScorerConfig configures the external RAGAS scoring pipeline client.
type ScorerConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	Timeout        time.Duration `yaml:"timeout"`                    // per submission, covers the full pipeline call
	RequestsPerMin int           `yaml:"requests_per_min,omitempty"` // 0 disables client-side rate limiting
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		SQLDatabase: DatabaseConfig{
			Provider: "sqlite",
			URI:      "ragbench.db",
			Database: "ragbench",
		},
		NoSQLDatabase: DatabaseConfig{
			Provider: "mongodb",
			URI:      "mongodb://localhost:27017",
			Database: "ragbench",
		},
		Scorer: ScorerConfig{
			Endpoint: "http://localhost:8000/score",
			Timeout:  10 * time.Minute,
		},
		CORSOrigin: "*",
		LogLevel:   "INFO",
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Scorer.Timeout <= 0 {
		config.Scorer.Timeout = 10 * time.Minute
	}

	return &config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ragbench/config.yaml"
	}
	return filepath.Join(home, ".ragbench", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
