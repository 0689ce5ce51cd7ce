package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	HTTPPort int    `mapstructure:"http_port"`
	Host     string `mapstructure:"host"`
	Timeout  int    `mapstructure:"timeout"`
}

// EngineConfig contains advisory engine settings
type EngineConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
}

// AuditConfig contains audit trail settings
type AuditConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// MonitorConfig contains deadline monitor settings
type MonitorConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// LoadConfig loads configuration from the given file, with environment
// variable overrides.
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.timeout", 30)

	viper.SetDefault("engine.default_currency", "USD")

	viper.SetDefault("audit.max_entries", 1000)

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.sweep_schedule", "@hourly")

	viper.SetDefault("logging.development", false)
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	if c.Engine.DefaultCurrency == "" {
		return fmt.Errorf("default currency is required")
	}

	if c.Audit.MaxEntries <= 0 {
		return fmt.Errorf("audit max entries must be positive: %d", c.Audit.MaxEntries)
	}

	if c.Monitor.Enabled && c.Monitor.SweepSchedule == "" {
		return fmt.Errorf("monitor sweep schedule is required when the monitor is enabled")
	}

	return nil
}

// InitLogger initializes the logger based on configuration
func (c *Config) InitLogger() (*zap.Logger, error) {
	var config zap.Config

	if c.Logging.Development {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}
