// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Camunda       CamundaConfig      `mapstructure:"camunda"`
	Database      DatabaseConfig     `mapstructure:"database"`
	API           APIConfig          `mapstructure:"api"`
	Matching      MatchingConfig     `mapstructure:"matching"`
	Batch         BatchConfig        `mapstructure:"batch"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	VehicleIndex string   `mapstructure:"vehicle_index"`
	Enabled      bool     `mapstructure:"enabled"`
}

type APIConfig struct {
	ListenAddress  string `mapstructure:"listen_address"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// --- Matching Engine Config ---

// MatchingConfig holds the scoring weights and prefilter bounds. Weights must
// sum to 100; the defaults reproduce the reference scoring model.
type MatchingConfig struct {
	Weights            WeightsConfig `mapstructure:"weights"`
	RadiusKm           float64       `mapstructure:"radius_km"`
	GraceDays          int           `mapstructure:"grace_days"`
	MaxTimeGapDays     int           `mapstructure:"max_time_gap_days"`
	DefaultLimit       int           `mapstructure:"default_limit"`
	MaxLimit           int           `mapstructure:"max_limit"`
	MaxCandidates      int           `mapstructure:"max_candidates"`
	FreightCacheTTLSec int           `mapstructure:"freight_cache_ttl_sec"`
}

type WeightsConfig struct {
	Capacity    int `mapstructure:"capacity"`
	Equipment   int `mapstructure:"equipment"`
	Proximity   int `mapstructure:"proximity"`
	TimeFit     int `mapstructure:"time_fit"`
	Destination int `mapstructure:"destination"`
}

// Sum returns the total of all sub-score weights.
func (w WeightsConfig) Sum() int {
	return w.Capacity + w.Equipment + w.Proximity + w.TimeFit + w.Destination
}

// BatchConfig holds the scheduled batch dispatcher settings.
type BatchConfig struct {
	HoursBack       int `mapstructure:"hours_back"`
	LimitPerFreight int `mapstructure:"limit_per_freight"`
	MaxRetries      int `mapstructure:"max_retries"`
	TimeoutSec      int `mapstructure:"timeout_sec"`
	Concurrency     int `mapstructure:"concurrency"`
}

type NotificationConfig struct {
	AWSRegion          string `mapstructure:"aws_region"`
	FromEmail          string `mapstructure:"from_email"`
	EmailEnabled       bool   `mapstructure:"email_enabled"`
	SMSEnabled         bool   `mapstructure:"sms_enabled"`
	ContactCacheTTLSec int    `mapstructure:"contact_cache_ttl_sec"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
