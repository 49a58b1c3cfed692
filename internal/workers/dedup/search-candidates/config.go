// internal/workers/dedup/search-candidates/config.go
package searchcandidates

import "time"

type Config struct {
	Timeout     time.Duration
	DefaultSize int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     15 * time.Second,
		DefaultSize: 10,
	}
}
