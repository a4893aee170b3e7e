package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	Nats       config.NATSConfig     `koanf:"nats"`
	Backend    config.BackendConfig  `koanf:"backend"`
	Search     SearchConfig          `koanf:"search"`
}

// SearchConfig has the settings of the search filter compiler.
type SearchConfig struct {
	// CategorySeparator is the canonical separator of hierarchical category
	// paths, e.g. " > ".
	CategorySeparator string `koanf:"categorySeparator"`
}

func (c *SearchConfig) Validate() error {
	if c.CategorySeparator == "" {
		return fmt.Errorf("search category separator is not configured")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- External Services ---\n")
	b.WriteString(fmt.Sprintf("  backend.url: %s\n", c.Backend.URL))
	b.WriteString(fmt.Sprintf("  backend.apikey: %s\n", maskKey(c.Backend.APIKey)))
	b.WriteString(fmt.Sprintf("  backend.timeout: %s\n", c.Backend.Timeout))
	b.WriteString(fmt.Sprintf("  backend.breaker.consecutiveFailures: %d\n", c.Backend.Breaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  backend.breaker.openTimeout: %s\n", c.Backend.Breaker.OpenTimeout))
	b.WriteString(fmt.Sprintf("  nats.url: %s\n", c.Nats.Url))
	b.WriteString(fmt.Sprintf("  nats.timeout: %s\n", c.Nats.Timeout))

	b.WriteString("\n--- Search ---\n")
	b.WriteString(fmt.Sprintf("  search.categorySeparator: %q\n", c.Search.CategorySeparator))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

func maskKey(key string) string {
	if key == "" {
		return "<not configured>"
	}
	return "****"
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}

	return nil
}
