// Package engine runs release task graphs.
package engine

import (
	"runtime"
	"time"

	"github.com/monoforge/monoforge/internal/application/dto"
	"github.com/monoforge/monoforge/internal/domain/execution"
)

// Concurrency constants for parallel execution.
const (
	// MinConcurrentTasks is the minimum number of concurrent task executions,
	// ensuring reasonable parallelism even on single-core systems.
	MinConcurrentTasks = 4

	// MaxRetryDelay caps the delay between retries of one task.
	MaxRetryDelay = 30 * time.Second
)

// ExecutionConfig controls execution behavior.
type ExecutionConfig struct {
	MaxConcurrentTasks int
	MaxOutputSize      int
	Retries            int
	RetryDelay         time.Duration
	RetryBackoff       BackoffType
	DryRun             bool
}

// DefaultExecutionConfig returns sensible defaults for parallel execution.
func DefaultExecutionConfig() ExecutionConfig {
	maxTasks := runtime.NumCPU()
	if maxTasks < MinConcurrentTasks {
		maxTasks = MinConcurrentTasks
	}

	return ExecutionConfig{
		MaxConcurrentTasks: maxTasks,
		MaxOutputSize:      execution.DefaultMaxOutputSize,
		RetryDelay:         time.Second,
		RetryBackoff:       BackoffExponential,
	}
}

// configFromOptions overlays request options on the defaults.
func configFromOptions(opts dto.ExecutionOptions) ExecutionConfig {
	cfg := DefaultExecutionConfig()
	if opts.Parallel > 0 {
		cfg.MaxConcurrentTasks = opts.Parallel
	}
	if opts.MaxOutputSize > 0 {
		cfg.MaxOutputSize = opts.MaxOutputSize
	}
	if opts.Retries > 0 {
		cfg.Retries = opts.Retries
	}
	if opts.RetryDelay > 0 {
		cfg.RetryDelay = opts.RetryDelay
	}
	cfg.DryRun = opts.DryRun
	return cfg
}
