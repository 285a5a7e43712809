package mocks

//go:generate mockgen -destination=./mock_strategy_runtime.go -package=mocks github.com/rxtech-lab/argo-backtest/internal/runtime StrategyRuntime
//go:generate mockgen -destination=./mock_price_source.go -package=mocks github.com/rxtech-lab/argo-backtest/internal/datasource PriceSource
