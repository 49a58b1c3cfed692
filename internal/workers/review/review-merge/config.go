// internal/workers/review/review-merge/config.go
package reviewmerge

import "time"

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
