package runtime

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// StrategyRuntime is the contract for a user-supplied strategy body. It receives the
// price series and a private copy of the parameter values and returns the closed trades
// in order. Implementations must not keep state, timers or I/O alive past the call.
type StrategyRuntime interface {
	// Execute runs the strategy body once over the series.
	Execute(ctx context.Context, series types.PriceSeries, params types.ParameterValues) ([]types.Trade, error)
	// Name returns a human-readable name of the runtime, used in logs.
	Name() string
}
