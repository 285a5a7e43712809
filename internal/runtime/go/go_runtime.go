package go_runtime

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/runtime"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// StrategyFunc is a strategy body written as a plain Go function.
type StrategyFunc func(series types.PriceSeries, params types.ParameterValues) ([]types.Trade, error)

// GoRuntime is a runtime for a strategy that is written in Go.
// So you don't need to build a wasm file to run it.
// It is used for testing and for embedding the engine in a Go host.
type GoRuntime struct {
	name     string
	strategy StrategyFunc
}

// Execute implements runtime.StrategyRuntime. A panic inside the strategy is returned as an error.
func (g *GoRuntime) Execute(ctx context.Context, series types.PriceSeries, params types.ParameterValues) (trades []types.Trade, err error) {
	if g.strategy == nil {
		return nil, fmt.Errorf("go runtime %s has no strategy function", g.name)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			trades = nil
			err = fmt.Errorf("strategy %s panicked: %v", g.name, r)
		}
	}()

	return g.strategy(series, params)
}

// Name implements runtime.StrategyRuntime.
func (g *GoRuntime) Name() string {
	return g.name
}

func NewGoRuntime(name string, strategy StrategyFunc) runtime.StrategyRuntime {
	return &GoRuntime{
		name:     name,
		strategy: strategy,
	}
}
