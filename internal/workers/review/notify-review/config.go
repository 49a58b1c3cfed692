// internal/workers/review/notify-review/config.go
package notifyreview

import (
	"fmt"
	"time"

	"entity-dedup-workers/internal/common/validation"
)

type Config struct {
	Timeout time.Duration

	EmailEnabled bool
	FromEmail    string
	Reviewers    []string

	SMSEnabled bool
	TopicARN   string
	// SMSMinConfidence gates SMS to batches whose best candidate clears it.
	SMSMinConfidence float64
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		EmailEnabled:     true,
		SMSEnabled:       false,
		SMSMinConfidence: 0.8,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.EmailEnabled {
		if !validation.ValidateEmail(c.FromEmail) {
			return fmt.Errorf("invalid from email %q", c.FromEmail)
		}
		if len(c.Reviewers) == 0 {
			return fmt.Errorf("at least one reviewer address is required when email is enabled")
		}
		for _, r := range c.Reviewers {
			if !validation.ValidateEmail(r) {
				return fmt.Errorf("invalid reviewer email %q", r)
			}
		}
	}
	if c.SMSEnabled && c.TopicARN == "" {
		return fmt.Errorf("topic ARN is required when sms is enabled")
	}
	return nil
}
