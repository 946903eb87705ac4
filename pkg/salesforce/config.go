package salesforce

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.mau.fi/util/ptr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIVersion  = "v58.0"
	DefaultTimeoutSecs = 60
)

// Config carries the connection settings for one Salesforce org. The access
// token is supplied ready to use; acquiring or refreshing it is the caller's
// problem.
type Config struct {
	InstanceURL string `yaml:"instance_url"`
	AccessToken string `yaml:"access_token"`
	APIVersion  string `yaml:"api_version"`
	TimeoutSecs int    `yaml:"timeout_seconds"`

	// MajorUpload controls whether created ContentVersions are marked as
	// major versions. Defaults to true.
	MajorUpload *bool `yaml:"major_upload"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	c.InstanceURL = strings.TrimRight(strings.TrimSpace(c.InstanceURL), "/")
	c.AccessToken = strings.TrimSpace(c.AccessToken)
	if strings.TrimSpace(c.APIVersion) == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	if c.MajorUpload == nil {
		c.MajorUpload = ptr.Ptr(true)
	}
	return c
}

// Validate reports whether the config is usable for API calls.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InstanceURL) == "" {
		return errors.New("instance_url is required")
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return errors.New("access_token is required")
	}
	return nil
}

// LoadConfig reads a YAML config file, then fills missing fields from the
// environment and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return ApplyEnvDefaults(&cfg), nil
}

func isEnabled(flag *bool, fallback bool) bool {
	if flag == nil {
		return fallback
	}
	return *flag
}
