// internal/workers/dedup/deduplicate-entities/config.go
package deduplicateentities

import "time"

type Config struct {
	Timeout      time.Duration
	CacheEnabled bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		CacheEnabled: true,
	}
}
