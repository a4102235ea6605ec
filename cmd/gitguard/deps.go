package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/gitguard/config"
	"github.com/dshills/gitguard/github"
	"github.com/dshills/gitguard/graph"
	"github.com/dshills/gitguard/graph/emit"
	"github.com/dshills/gitguard/graph/store"
	"github.com/dshills/gitguard/providers"
	"github.com/dshills/gitguard/review"
)

// buildWorkflow assembles a Workflow from the environment. The
// returned cleanup releases the store and provider connections.
func buildWorkflow(ctx context.Context) (*review.Workflow, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	st, err := buildStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if c, ok := st.(interface{ Close() error }); ok {
		closers = append(closers, func() { _ = c.Close() })
	}

	analyst, err := buildAnalyst(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if c, ok := analyst.(interface{ Close() error }); ok {
		closers = append(closers, func() { _ = c.Close() })
	}

	ghClient := github.NewClient(cfg.GitHubToken)

	var metrics *graph.Metrics
	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		metrics = graph.NewMetrics(registry)
		go serveMetrics(cfg.MetricsAddr, registry)
	}

	wf, err := review.New(review.Deps{
		Fetcher: ghClient,
		Analyst: analyst,
		Poster:  ghClient,
		Store:   st,
		Emitter: emit.NewLogEmitter(os.Stderr),
		Metrics: metrics,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return wf, cleanup, nil
}

func buildStore(cfg *config.Config) (store.Store[review.State], error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return store.NewSQLiteStore[review.State](cfg.DBPath)
	case config.StoreMySQL:
		return store.NewMySQLStore[review.State](cfg.MySQLDSN)
	case config.StoreMemory:
		return store.NewMemStore[review.State](), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
}

func buildAnalyst(ctx context.Context, cfg *config.Config) (review.Analyst, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return providers.NewOpenAIAnalyst(cfg.APIKey, cfg.Model)
	case config.ProviderAnthropic:
		return providers.NewAnthropicAnalyst(cfg.APIKey, cfg.Model)
	case config.ProviderGoogle:
		return providers.NewGoogleAnalyst(ctx, cfg.APIKey, cfg.Model)
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics listener failed: %v\n", err)
	}
}

// printComments renders proposed comments for operator inspection.
func printComments(w *os.File, state review.State) {
	if len(state.ProposedComments) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}

	fmt.Fprintf(w, "%d proposed comment(s) for %s#%d:\n\n", len(state.ProposedComments), state.RepoName, state.PRNumber)
	for i, c := range state.ProposedComments {
		fmt.Fprintf(w, "%d. [%s] %s:%d\n   %s\n\n", i+1, c.Severity, c.FilePath, c.LineNumber, c.Body)
	}
}
