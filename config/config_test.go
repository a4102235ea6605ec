package config

import (
	"strings"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITGUARD_GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITGUARD_PROVIDER", "openai")
	t.Setenv("GITGUARD_OPENAI_API_KEY", "sk-test")
	t.Setenv("GITGUARD_ANTHROPIC_API_KEY", "")
	t.Setenv("GITGUARD_GOOGLE_API_KEY", "")
	t.Setenv("GITGUARD_MODEL", "")
	t.Setenv("GITGUARD_STORE", "")
	t.Setenv("GITGUARD_DB_PATH", "")
	t.Setenv("GITGUARD_MYSQL_DSN", "")
	t.Setenv("GITGUARD_METRICS_ADDR", "")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setBaseEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Provider != ProviderOpenAI || cfg.APIKey != "sk-test" {
			t.Errorf("provider config = %q/%q", cfg.Provider, cfg.APIKey)
		}
		if cfg.Store != StoreSQLite {
			t.Errorf("Store = %q, want sqlite default", cfg.Store)
		}
		if cfg.DBPath != "gitguard.db" {
			t.Errorf("DBPath = %q, want gitguard.db default", cfg.DBPath)
		}
	})

	t.Run("missing github token", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GITGUARD_GITHUB_TOKEN", "")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "GITGUARD_GITHUB_TOKEN") {
			t.Errorf("Load() error = %v, want token error", err)
		}
	})

	t.Run("provider key mismatch", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GITGUARD_PROVIDER", "anthropic")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "GITGUARD_ANTHROPIC_API_KEY") {
			t.Errorf("Load() error = %v, want anthropic key error", err)
		}
	})

	t.Run("anthropic provider", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GITGUARD_PROVIDER", "anthropic")
		t.Setenv("GITGUARD_ANTHROPIC_API_KEY", "sk-ant-test")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.APIKey != "sk-ant-test" {
			t.Errorf("APIKey = %q", cfg.APIKey)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GITGUARD_PROVIDER", "llama")

		if _, err := Load(); err == nil {
			t.Error("Load() accepted unknown provider")
		}
	})

	t.Run("mysql store requires dsn", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GITGUARD_STORE", "mysql")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "GITGUARD_MYSQL_DSN") {
			t.Errorf("Load() error = %v, want DSN error", err)
		}

		t.Setenv("GITGUARD_MYSQL_DSN", "user:pass@tcp(localhost:3306)/gitguard?parseTime=true")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Store != StoreMySQL {
			t.Errorf("Store = %q, want mysql", cfg.Store)
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GITGUARD_STORE", "postgres")

		if _, err := Load(); err == nil {
			t.Error("Load() accepted unknown store")
		}
	})
}
