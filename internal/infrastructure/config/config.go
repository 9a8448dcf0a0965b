package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server     Server     `mapstructure:"server"`
	Bank       Bank       `mapstructure:"bank"`
	Settlement Settlement `mapstructure:"settlement"`
	Events     Events     `mapstructure:"events"`
}

// Server configuration
type Server struct {
	Port string `mapstructure:"port"`
}

// Bank configures the fixed account universe
type Bank struct {
	AccountCount   int64 `mapstructure:"accountCount"`
	InitialBalance int64 `mapstructure:"initialBalance"`
}

// Settlement configures the batch settlement schedule
type Settlement struct {
	BatchSize int           `mapstructure:"batchSize"`
	Interval  time.Duration `mapstructure:"interval"`
}

// Events configures the optional settlement event stream
type Events struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LoadConfig loads configuration from YAML file
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		viper.SetConfigFile(baseConfigPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Load environment-specific config (e.g. local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		if baseConfigExists {
			// Merge environment config on top of base config
			viper.SetConfigFile(envConfigPath)
			if err := viper.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else {
			viper.SetConfigFile(envConfigPath)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read env config file: %w", err)
			}
		}
	}
	// With neither file present the service runs on defaults and env vars.

	viper.SetEnvPrefix("TALLY")
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "TALLY_SERVER_PORT", "PORT")
	viper.BindEnv("bank.accountCount", "TALLY_BANK_ACCOUNT_COUNT")
	viper.BindEnv("bank.initialBalance", "TALLY_BANK_INITIAL_BALANCE")
	viper.BindEnv("settlement.batchSize", "TALLY_SETTLEMENT_BATCH_SIZE")
	viper.BindEnv("settlement.interval", "TALLY_SETTLEMENT_INTERVAL")
	viper.BindEnv("events.brokers", "TALLY_EVENTS_BROKERS", "KAFKA_BROKERS")
	viper.BindEnv("events.topic", "TALLY_EVENTS_TOPIC")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8090"
	}
	if cfg.Bank.AccountCount <= 0 {
		cfg.Bank.AccountCount = 10
	}
	if cfg.Bank.InitialBalance == 0 {
		cfg.Bank.InitialBalance = 100
	}
	if cfg.Settlement.BatchSize <= 0 {
		cfg.Settlement.BatchSize = 100
	}
	if cfg.Settlement.Interval == 0 {
		cfg.Settlement.Interval = 200 * time.Millisecond
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = "settlement_completed"
	}

	// Handle interval given as a duration string (e.g. "200ms", "1s")
	if intervalStr := viper.GetString("settlement.interval"); intervalStr != "" {
		if parsed, err := time.ParseDuration(intervalStr); err == nil {
			cfg.Settlement.Interval = parsed
		}
	}

	return &cfg, nil
}
