// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual locations so local runs and tests in
// nested packages pick up the same secrets.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "matching-engine"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 4
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 300000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.API.ListenAddress == "" {
		cfg.API.ListenAddress = ":8080"
	}
	if cfg.API.RequestTimeout == 0 {
		cfg.API.RequestTimeout = 5000
	}

	applyMatchingDefaults(&cfg.Matching)
	applyBatchDefaults(&cfg.Batch)

	if cfg.Notifications.ContactCacheTTLSec == 0 {
		cfg.Notifications.ContactCacheTTLSec = 600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyMatchingDefaults(m *MatchingConfig) {
	if m.Weights.Sum() == 0 {
		m.Weights = WeightsConfig{
			Capacity:    25,
			Equipment:   20,
			Proximity:   30,
			TimeFit:     15,
			Destination: 10,
		}
	}
	if m.RadiusKm == 0 {
		m.RadiusKm = 300
	}
	if m.GraceDays == 0 {
		m.GraceDays = 2
	}
	if m.MaxTimeGapDays == 0 {
		m.MaxTimeGapDays = 5
	}
	if m.DefaultLimit == 0 {
		m.DefaultLimit = 5
	}
	if m.MaxLimit == 0 {
		m.MaxLimit = 50
	}
	if m.MaxCandidates == 0 {
		m.MaxCandidates = 500
	}
	if m.FreightCacheTTLSec == 0 {
		m.FreightCacheTTLSec = 120
	}
}

func applyBatchDefaults(b *BatchConfig) {
	if b.HoursBack == 0 {
		b.HoursBack = 6
	}
	if b.LimitPerFreight == 0 {
		b.LimitPerFreight = 5
	}
	if b.MaxRetries == 0 {
		b.MaxRetries = 2
	}
	if b.TimeoutSec == 0 {
		b.TimeoutSec = 300
	}
	if b.Concurrency == 0 {
		b.Concurrency = 4
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Matching.Weights.Sum() != 100 {
		return fmt.Errorf("matching weights must sum to 100, got %d", cfg.Matching.Weights.Sum())
	}
	if cfg.Matching.RadiusKm <= 0 {
		return fmt.Errorf("matching radius_km must be positive")
	}
	if cfg.Matching.DefaultLimit > cfg.Matching.MaxLimit {
		return fmt.Errorf("matching default_limit %d exceeds max_limit %d",
			cfg.Matching.DefaultLimit, cfg.Matching.MaxLimit)
	}
	if cfg.Batch.HoursBack < 0 {
		return fmt.Errorf("batch hours_back must not be negative")
	}
	if cfg.Database.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("elasticsearch enabled but no addresses configured")
	}
	return nil
}
