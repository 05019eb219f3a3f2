// Package config assembles the sfbulk CLI configuration from four layers,
// each overriding the previous one: built-in defaults, a JSON file named by
// -c/-config, SF_-prefixed environment variables, and command-line flags.
package config

import "time"

// Config holds runtime settings for the sfbulk CLI.
//
// Credential fields mirror the library's login methods: username/password
// plus either a security token or an organization id, or a pre-acquired
// session id with its instance host. Object, Operation and the input/query
// fields describe the bulk run itself.
type Config struct {
	Username       string
	Password       string
	SecurityToken  string
	OrganizationID string
	SessionID      string
	InstanceHost   string
	Domain         string
	APIVersion     string

	Object          string
	Operation       string
	ExternalIDField string
	InputFile       string
	Query           string

	Serial       bool
	BatchSize    int
	PollInterval time.Duration
	Workers      int
	MaxPolls     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Domain = "login"
	c.APIVersion = "42.0"
	c.Operation = "insert"
	c.BatchSize = 10000
	c.PollInterval = 5 * time.Second
	c.Workers = 4
}

// Load constructs a Config, applies defaults, then overlays values from JSON
// (if present), environment variables and command-line flags. Later sources
// take precedence over earlier ones.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
