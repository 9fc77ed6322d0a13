// Package config holds run configuration and YAML profile loading.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is reported by the CLI and embedded in the default user agent.
const Version = "0.1.0"

// Engine names select the HTTP client implementation.
const (
	EngineNet      = "net"
	EngineFasthttp = "fasthttp"
)

// Defaults for the optional run settings.
const (
	DefaultRequests    = 200000
	DefaultConcurrency = 100
	DefaultTimeout     = 10 * time.Second
	DefaultUserAgent   = "davload/" + Version
)

// Run is the configuration for one load-generation run. It is treated
// as immutable once the run starts.
type Run struct {
	BaseURL     string        `yaml:"baseURL"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	Requests    int           `yaml:"requests"`
	Concurrency int           `yaml:"concurrency"`
	UserAgent   string        `yaml:"userAgent"`
	Timeout     time.Duration `yaml:"timeout"`
	Pace        int           `yaml:"pace"`
	Engine      string        `yaml:"engine"`
	Insecure    bool          `yaml:"insecure"`
}

// Load reads and parses a YAML run profile.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Run
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Normalize fills unset optional settings with their defaults and
// clamps concurrency to the request count so batch sizing stays
// meaningful. Call before Validate.
func (c *Run) Normalize() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Engine == "" {
		c.Engine = EngineNet
	}
	if c.Requests > 0 && c.Concurrency > c.Requests {
		c.Concurrency = c.Requests
	}
}

// Validate reports the first configuration error. A validation failure
// means the run must not dispatch anything.
func (c *Run) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q: only http and https are supported", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL %q has no host", c.BaseURL)
	}
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	if c.Requests <= 0 {
		return errors.New("request count must be a positive integer")
	}
	if c.Concurrency <= 0 {
		return errors.New("concurrency must be a positive integer")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Pace < 0 {
		return errors.New("pace must not be negative")
	}
	if c.Engine != EngineNet && c.Engine != EngineFasthttp {
		return fmt.Errorf("unknown engine %q: valid engines are %q and %q", c.Engine, EngineNet, EngineFasthttp)
	}
	return nil
}
