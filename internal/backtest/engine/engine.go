package engine

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/runtime"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

type StrategyType string

const (
	StrategyTypeWASM StrategyType = "wasm"
)

// Engine runs one strategy over one price series and reports the statistics of the trades.
// A run is atomic from the caller's view: it either returns a complete result or an error.
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// Run executes def over series with its default parameters overridden by params.
	// Failures inside a custom strategy body do not surface here; they yield zero trades.
	Run(ctx context.Context, series types.PriceSeries, def strategy.StrategyDefinition, params types.ParameterValues) (types.BacktestResult, error)
	// Indicators returns the aligned moving averages the crossover rule would use for def and params.
	Indicators(series types.PriceSeries, def strategy.StrategyDefinition, params types.ParameterValues) (types.CrossoverIndicators, error)
	// LoadStrategyFromFile loads a custom strategy body from the given file.
	LoadStrategyFromFile(strategyPath string) (runtime.StrategyRuntime, error)
	// LoadStrategyFromBytes loads a custom strategy body from the given bytes.
	LoadStrategyFromBytes(strategyBytes []byte, strategyType StrategyType) (runtime.StrategyRuntime, error)
	// GetConfigSchema returns the JSON schema of the engine configuration
	GetConfigSchema() (string, error)
}
