// internal/workers/matching/batch-match/config.go
package batchmatch

import (
	"time"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
)

type Config struct {
	HoursBack       int
	LimitPerFreight int
	Concurrency     int
	MaxRetries      int
	Timeout         time.Duration
}

func LoadConfig(cfg config.BatchConfig) *Config {
	return &Config{
		HoursBack:       cfg.HoursBack,
		LimitPerFreight: cfg.LimitPerFreight,
		Concurrency:     cfg.Concurrency,
		MaxRetries:      cfg.MaxRetries,
		Timeout:         time.Duration(cfg.TimeoutSec) * time.Second,
	}
}
