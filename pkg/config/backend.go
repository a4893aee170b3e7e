package config

import (
	"fmt"
	"time"
)

// BackendConfig has the connection settings for the commerce backend store API.
type BackendConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"apikey"`
	Timeout time.Duration `koanf:"timeout"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig has the circuit breaker settings for backend calls.
type BreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *BackendConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("backend URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("backend timeout is not configured")
	}
	return c.Breaker.Validate()
}

func (c *BreakerConfig) Validate() error {
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("breaker.consecutive_failures must be greater than 0")
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("breaker.open_timeout must be greater than 0")
	}
	return nil
}
