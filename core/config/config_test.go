package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc", AdminID: 412216093},
	}
}

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = " Polling "
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"missing token":    func(c *Config) { c.Telegram.Token = " " },
		"missing operator": func(c *Config) { c.Telegram.AdminID = 0 },
		"unknown run mode": func(c *Config) { c.Telegram.RunMode = "push" },
		"webhook no url": func(c *Config) {
			c.Telegram.RunMode = RunModeWebhook
			c.Webhook = WebhookConfig{Listen: "0.0.0.0", Port: 8443}
		},
		"webhook no port": func(c *Config) {
			c.Telegram.RunMode = RunModeWebhook
			c.Webhook = WebhookConfig{URL: "https://example.org/hook", Listen: "0.0.0.0"}
		},
		"negative timeout": func(c *Config) { c.Telegram.LongPollTimeoutSeconds = -1 },
		"bad exclusion":    func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"inline_query"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			if err := Normalize(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNormalizeLowercasesExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback", ""}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclusion = %q", cfg.RateLimit.ExcludeUpdates[0])
	}
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := strings.Join([]string{
		"telegram:",
		"  token: from-file",
		"  admin_id: 7",
		"logging:",
		"  level: debug",
	}, "\n")
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 7 {
		t.Fatalf("admin id = %d", cfg.Telegram.AdminID)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
