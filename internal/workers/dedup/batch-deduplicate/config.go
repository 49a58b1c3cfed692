// internal/workers/dedup/batch-deduplicate/config.go
package batchdeduplicate

import "time"

type Config struct {
	Timeout          time.Duration
	DefaultChunkSize int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:          120 * time.Second,
		DefaultChunkSize: 100,
	}
}
