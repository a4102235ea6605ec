package graph

import (
	"fmt"
	"time"
)

// engineConfig holds settings applied through functional options.
type engineConfig struct {
	maxSteps        int
	nodeTimeout     time.Duration
	interruptBefore map[string]bool
	metrics         *Metrics
}

func defaultConfig() engineConfig {
	return engineConfig{
		maxSteps:        100,
		interruptBefore: map[string]bool{},
	}
}

// Option configures an Engine at construction time.
type Option func(*engineConfig) error

// WithMaxSteps bounds the number of node executions in a single run.
// Guards against routing cycles. Must be positive.
func WithMaxSteps(n int) Option {
	return func(c *engineConfig) error {
		if n <= 0 {
			return fmt.Errorf("max steps must be positive, got %d", n)
		}
		c.maxSteps = n
		return nil
	}
}

// WithNodeTimeout applies a per-node execution deadline. Zero disables
// the timeout.
func WithNodeTimeout(d time.Duration) Option {
	return func(c *engineConfig) error {
		if d < 0 {
			return fmt.Errorf("node timeout must be non-negative, got %v", d)
		}
		c.nodeTimeout = d
		return nil
	}
}

// WithInterruptBefore marks nodes that suspend the run before they
// execute. When the engine is about to run a marked node it persists an
// interrupt snapshot and returns ErrInterrupted; Resume re-enters at
// the marked node.
func WithInterruptBefore(nodeIDs ...string) Option {
	return func(c *engineConfig) error {
		for _, id := range nodeIDs {
			if id == "" {
				return fmt.Errorf("interrupt node ID cannot be empty")
			}
			c.interruptBefore[id] = true
		}
		return nil
	}
}

// WithMetrics attaches a Prometheus metrics collector to the engine.
func WithMetrics(m *Metrics) Option {
	return func(c *engineConfig) error {
		c.metrics = m
		return nil
	}
}
