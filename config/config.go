// Package config loads gitguard settings from the environment.
package config

import (
	"fmt"
	"os"
)

// Supported analyst providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// Supported store backends.
const (
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds everything the CLI needs to assemble a workflow.
type Config struct {
	// GitHubToken authenticates diff fetching and review posting.
	GitHubToken string

	// Provider selects the analyst backend: openai, anthropic, google.
	Provider string

	// APIKey is the key for the selected provider.
	APIKey string

	// Model overrides the provider's default model. Optional.
	Model string

	// Store selects the persistence backend: sqlite, mysql, memory.
	Store string

	// DBPath is the SQLite database file path.
	DBPath string

	// MySQLDSN is the MySQL connection string (requires parseTime=true).
	MySQLDSN string

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string
}

// Load reads configuration from GITGUARD_* environment variables and
// validates it. Missing required settings fail fast with an error
// naming the variable.
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken: os.Getenv("GITGUARD_GITHUB_TOKEN"),
		Provider:    envOr("GITGUARD_PROVIDER", ProviderOpenAI),
		Model:       os.Getenv("GITGUARD_MODEL"),
		Store:       envOr("GITGUARD_STORE", StoreSQLite),
		DBPath:      envOr("GITGUARD_DB_PATH", "gitguard.db"),
		MySQLDSN:    os.Getenv("GITGUARD_MYSQL_DSN"),
		MetricsAddr: os.Getenv("GITGUARD_METRICS_ADDR"),
	}

	if cfg.GitHubToken == "" {
		return nil, fmt.Errorf("GITGUARD_GITHUB_TOKEN is required")
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("GITGUARD_OPENAI_API_KEY")
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GITGUARD_OPENAI_API_KEY is required for provider %q", cfg.Provider)
		}
	case ProviderAnthropic:
		cfg.APIKey = os.Getenv("GITGUARD_ANTHROPIC_API_KEY")
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GITGUARD_ANTHROPIC_API_KEY is required for provider %q", cfg.Provider)
		}
	case ProviderGoogle:
		cfg.APIKey = os.Getenv("GITGUARD_GOOGLE_API_KEY")
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GITGUARD_GOOGLE_API_KEY is required for provider %q", cfg.Provider)
		}
	default:
		return nil, fmt.Errorf("GITGUARD_PROVIDER must be one of openai, anthropic, google; got %q", cfg.Provider)
	}

	switch cfg.Store {
	case StoreSQLite, StoreMemory:
	case StoreMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("GITGUARD_MYSQL_DSN is required for store %q", cfg.Store)
		}
	default:
		return nil, fmt.Errorf("GITGUARD_STORE must be one of sqlite, mysql, memory; got %q", cfg.Store)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
