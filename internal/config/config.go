// Package config provides configuration management for the DriveSense service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sebasr/drivesense/internal/behavior"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Alerting AlertingConfig
	Engine   EngineConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// AlertingConfig holds behavior-alert notification configuration
type AlertingConfig struct {
	Provider       string // Alert provider: "mailgun", "console" or "mock"
	MailgunDomain  string // Mailgun domain
	MailgunAPIKey  string // Mailgun API key
	FromAddress    string // Sender email address
	FromName       string // Sender name
	ManagerAddress string // Fleet manager address receiving alerts
	MinSeverity    string // Lowest severity forwarded to the notifier
}

// EngineConfig holds behavior-engine tunables. Threshold values not
// listed here come from behavior.DefaultThresholds.
type EngineConfig struct {
	AssumedMaxGear      int           // Top gear for the fleet's vehicle type
	CrossValidationPct  float64       // Allowed Kalman-vs-ECU divergence
	EvictionInterval    time.Duration // How often the inactive sweep runs
	MaxInactiveDuration time.Duration // Idle time before a vehicle is evicted
	DefaultPeriodHours  float64       // Scoring period when the caller omits one
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                   string
	Host                  string
	Port                  string
	Name                  string
	User                  string
	Password              string
	SSLMode               string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:                   os.Getenv("DATABASE_URL"),
			Host:                  getEnv("DB_HOST", "localhost"),
			Port:                  getEnv("DB_PORT", "5432"),
			Name:                  getEnv("DB_NAME", "drivesense_dev"),
			User:                  getEnv("DB_USER", "drivesense_user"),
			Password:              GetSecret("DB_PASSWORD", "drivesense_pass"),
			SSLMode:               getEnv("DB_SSLMODE", "disable"),
			MaxConnections:        getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections:    getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnectionMaxLifetime: getEnvAsDuration("DB_CONNECTION_MAX_LIFETIME", "5m"),
		},
		Alerting: AlertingConfig{
			Provider:       getEnv("ALERT_PROVIDER", "console"),
			MailgunDomain:  GetSecret("MAILGUN_DOMAIN", ""),
			MailgunAPIKey:  GetSecret("MAILGUN_API_KEY", ""),
			FromAddress:    getEnv("ALERT_FROM_ADDRESS", "alerts@example.com"),
			FromName:       getEnv("ALERT_FROM_NAME", "DriveSense Alerts"),
			ManagerAddress: getEnv("ALERT_MANAGER_ADDRESS", ""),
			MinSeverity:    getEnv("ALERT_MIN_SEVERITY", "severe"),
		},
		Engine: EngineConfig{
			AssumedMaxGear:      getEnvAsInt("ENGINE_MAX_GEAR", 10),
			CrossValidationPct:  getEnvAsFloat("ENGINE_CROSS_VALIDATION_PCT", 15.0),
			EvictionInterval:    getEnvAsDuration("ENGINE_EVICTION_INTERVAL", "10m"),
			MaxInactiveDuration: getEnvAsDuration("ENGINE_MAX_INACTIVE", "24h"),
			DefaultPeriodHours:  getEnvAsFloat("ENGINE_DEFAULT_PERIOD_HOURS", 24),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Alerting.Provider == "mailgun" {
		if c.Alerting.MailgunAPIKey == "" {
			return fmt.Errorf("MAILGUN_API_KEY is required when ALERT_PROVIDER=mailgun")
		}
		if c.Alerting.MailgunDomain == "" {
			return fmt.Errorf("MAILGUN_DOMAIN is required when ALERT_PROVIDER=mailgun")
		}
		if c.Alerting.ManagerAddress == "" {
			return fmt.Errorf("ALERT_MANAGER_ADDRESS is required when ALERT_PROVIDER=mailgun")
		}
	}
	switch c.Alerting.MinSeverity {
	case "minor", "moderate", "severe", "critical":
	default:
		return fmt.Errorf("ALERT_MIN_SEVERITY must be one of minor, moderate, severe, critical; got %q", c.Alerting.MinSeverity)
	}
	if c.Engine.AssumedMaxGear < 2 {
		return fmt.Errorf("ENGINE_MAX_GEAR must be at least 2, got %d", c.Engine.AssumedMaxGear)
	}
	if c.Engine.CrossValidationPct <= 0 {
		return fmt.Errorf("ENGINE_CROSS_VALIDATION_PCT must be positive, got %v", c.Engine.CrossValidationPct)
	}
	return nil
}

// Thresholds builds the engine threshold table: the package defaults
// with the env-tunable values applied on top.
func (c *Config) Thresholds() behavior.Thresholds {
	th := behavior.DefaultThresholds()
	th.AssumedMaxGear = c.Engine.AssumedMaxGear
	th.CrossValidationTolerancePct = c.Engine.CrossValidationPct
	return th
}

// ConnectionString returns the database connection string
func (d *DatabaseConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}
	return value
}
