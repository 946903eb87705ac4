package salesforce

import (
	"os"
	"strconv"
	"strings"
)

// ConfigFromEnv builds a connection config using environment variables.
func ConfigFromEnv() *Config {
	cfg := &Config{
		InstanceURL: strings.TrimSpace(os.Getenv("SALESFORCE_INSTANCE_URL")),
		AccessToken: strings.TrimSpace(os.Getenv("SALESFORCE_ACCESS_TOKEN")),
		APIVersion:  strings.TrimSpace(os.Getenv("SALESFORCE_API_VERSION")),
	}
	if raw := strings.TrimSpace(os.Getenv("SALESFORCE_TIMEOUT_SECONDS")); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.TimeoutSecs = secs
		}
	}
	return cfg.WithDefaults()
}

// ApplyEnvDefaults fills empty config fields from environment variables, then
// applies defaults. Values already present in cfg win over the environment.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		return ConfigFromEnv()
	}
	cfg.InstanceURL = envOr(cfg.InstanceURL, os.Getenv("SALESFORCE_INSTANCE_URL"))
	cfg.AccessToken = envOr(cfg.AccessToken, os.Getenv("SALESFORCE_ACCESS_TOKEN"))
	cfg.APIVersion = envOr(cfg.APIVersion, os.Getenv("SALESFORCE_API_VERSION"))
	if cfg.TimeoutSecs <= 0 {
		if raw := strings.TrimSpace(os.Getenv("SALESFORCE_TIMEOUT_SECONDS")); raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				cfg.TimeoutSecs = secs
			}
		}
	}
	return cfg.WithDefaults()
}

// envOr returns existing unless it is blank, in which case the trimmed env
// value is used.
func envOr(existing, value string) string {
	if strings.TrimSpace(existing) != "" {
		return existing
	}
	return strings.TrimSpace(value)
}
