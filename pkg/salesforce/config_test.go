package salesforce

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := (&Config{InstanceURL: "https://org.my.salesforce.com/ ", AccessToken: " tok "}).WithDefaults()
	if cfg.InstanceURL != "https://org.my.salesforce.com" {
		t.Errorf("InstanceURL = %q", cfg.InstanceURL)
	}
	if cfg.AccessToken != "tok" {
		t.Errorf("AccessToken = %q", cfg.AccessToken)
	}
	if cfg.APIVersion != "v58.0" {
		t.Errorf("APIVersion = %q", cfg.APIVersion)
	}
	if cfg.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.TimeoutSecs)
	}
	if cfg.MajorUpload == nil || !*cfg.MajorUpload {
		t.Errorf("MajorUpload = %v, want true", cfg.MajorUpload)
	}

	var nilCfg *Config
	if got := nilCfg.WithDefaults(); got == nil || got.APIVersion != "v58.0" {
		t.Errorf("nil.WithDefaults() = %+v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (&Config{}).Validate(); err == nil {
		t.Error("expected error for empty config")
	}
	if err := (&Config{InstanceURL: "https://x"}).Validate(); err == nil {
		t.Error("expected error for missing token")
	}
	cfg := &Config{InstanceURL: "https://x", AccessToken: "tok"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SALESFORCE_INSTANCE_URL", "https://env.my.salesforce.com")
	t.Setenv("SALESFORCE_ACCESS_TOKEN", "env-token")
	t.Setenv("SALESFORCE_API_VERSION", "v60.0")
	t.Setenv("SALESFORCE_TIMEOUT_SECONDS", "15")

	cfg := ConfigFromEnv()
	if cfg.InstanceURL != "https://env.my.salesforce.com" {
		t.Errorf("InstanceURL = %q", cfg.InstanceURL)
	}
	if cfg.AccessToken != "env-token" {
		t.Errorf("AccessToken = %q", cfg.AccessToken)
	}
	if cfg.APIVersion != "v60.0" {
		t.Errorf("APIVersion = %q", cfg.APIVersion)
	}
	if cfg.TimeoutSecs != 15 {
		t.Errorf("TimeoutSecs = %d", cfg.TimeoutSecs)
	}
}

func TestApplyEnvDefaultsPrefersExplicitValues(t *testing.T) {
	t.Setenv("SALESFORCE_INSTANCE_URL", "https://env.my.salesforce.com")
	t.Setenv("SALESFORCE_ACCESS_TOKEN", "env-token")

	cfg := ApplyEnvDefaults(&Config{InstanceURL: "https://file.my.salesforce.com"})
	if cfg.InstanceURL != "https://file.my.salesforce.com" {
		t.Errorf("InstanceURL = %q, want file value", cfg.InstanceURL)
	}
	if cfg.AccessToken != "env-token" {
		t.Errorf("AccessToken = %q, want env fill-in", cfg.AccessToken)
	}

	if got := ApplyEnvDefaults(nil); got.AccessToken != "env-token" {
		t.Errorf("nil config AccessToken = %q", got.AccessToken)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SALESFORCE_INSTANCE_URL", "")
	t.Setenv("SALESFORCE_ACCESS_TOKEN", "")
	path := filepath.Join(t.TempDir(), "salesforce.yaml")
	data := []byte("instance_url: https://file.my.salesforce.com\naccess_token: file-token\ntimeout_seconds: 30\nmajor_upload: false\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.InstanceURL != "https://file.my.salesforce.com" {
		t.Errorf("InstanceURL = %q", cfg.InstanceURL)
	}
	if cfg.AccessToken != "file-token" {
		t.Errorf("AccessToken = %q", cfg.AccessToken)
	}
	if cfg.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d", cfg.TimeoutSecs)
	}
	if cfg.MajorUpload == nil || *cfg.MajorUpload {
		t.Errorf("MajorUpload = %v, want false", cfg.MajorUpload)
	}
	if cfg.APIVersion != "v58.0" {
		t.Errorf("APIVersion = %q", cfg.APIVersion)
	}

	if _, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
