package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, databaseDSNEnv, storageDriverEnv, redisAddrEnv, redisPasswordEnv,
		httpAddrEnv, logLevelEnv, chatGPTAPIKeyEnv, chatGPTModelEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Fetcher.Timeout != 15*time.Second || cfg.Fetcher.MaxBodyBytes != 5<<20 {
		t.Errorf("fetcher = %+v", cfg.Fetcher)
	}
	if cfg.Pipeline.MaxLinksPerSource != 5 || cfg.Pipeline.ArticleConcurrency != 3 {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Scheduler.Location() != time.UTC {
		t.Errorf("location = %v", cfg.Scheduler.Location())
	}
	if cfg.Notifications.Telegram.Enabled() {
		t.Error("telegram enabled without credentials")
	}
	if len(cfg.Sources) != len(DefaultSources()) {
		t.Errorf("sources = %d", len(cfg.Sources))
	}
}

func TestDefaultSourcesCatalog(t *testing.T) {
	t.Parallel()

	sources := DefaultSources()
	nigerian := 0
	seen := map[string]bool{}
	for _, s := range sources {
		if s.Name == "" || !strings.HasPrefix(s.URL, "https://") || s.Country == "" {
			t.Errorf("incomplete source %+v", s)
		}
		if seen[s.URL] {
			t.Errorf("duplicate url %s", s.URL)
		}
		seen[s.URL] = true
		if s.Nigerian {
			nigerian++
			if s.Country != "Nigeria" {
				t.Errorf("nigerian source %s has country %s", s.Name, s.Country)
			}
		}
	}
	if nigerian == 0 || nigerian == len(sources) {
		t.Fatalf("catalog must mix Nigerian and international sources, got %d of %d", nigerian, len(sources))
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
storage:
  driver: postgres
  dsn: postgres://file/db
scheduler:
  interval: 6h
  timezone: Africa/Lagos
pipeline:
  articleConcurrency: 8
sources:
  - name: Local Desk
    url: https://local.example
    country: Nigeria
    nigerian: true
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env/db")
	t.Setenv(httpAddrEnv, ":9090")
	t.Setenv(chatGPTAPIKeyEnv, "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.Driver != StoragePostgres || cfg.Storage.DSN != "postgres://env/db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Scheduler.Interval != 6*time.Hour {
		t.Errorf("interval = %v", cfg.Scheduler.Interval)
	}
	if cfg.Scheduler.Location().String() != "Africa/Lagos" {
		t.Errorf("location = %v", cfg.Scheduler.Location())
	}
	if cfg.Pipeline.ArticleConcurrency != 8 || cfg.Pipeline.MaxLinksPerSource != 5 {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.ChatGPT.APIKey != "sk-test" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.HTTP, cfg.ChatGPT)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Local Desk" {
		t.Errorf("sources = %+v", cfg.Sources)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"unknown driver": "storage:\n  driver: mongo\n",
		"postgres dsn":   "storage:\n  driver: postgres\n",
		"concurrency":    "pipeline:\n  articleConcurrency: 0\n",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			t.Setenv(configPathEnv, path)

			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
