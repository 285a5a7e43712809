package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/runtime"
	"github.com/rxtech-lab/argo-backtest/internal/runtime/wasm"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type BacktestEngineV1 struct {
	config      BacktestEngineV1Config
	log         *logger.Logger
	executor    *Executor
	initialized bool
}

// Option configures a BacktestEngineV1.
type Option func(*BacktestEngineV1)

// WithLogger makes the engine log through log instead of building its own logger.
func WithLogger(log *logger.Logger) Option {
	return func(b *BacktestEngineV1) {
		b.log = log
	}
}

func NewBacktestEngineV1(opts ...Option) engine.Engine {
	b := &BacktestEngineV1{
		config:      EmptyConfig(),
		log:         nil,
		executor:    nil,
		initialized: false,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Initialize implements engine.Engine. Fields missing from config keep their defaults.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed := EmptyConfig()

	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse backtest engine config", err)
	}

	if err := parsed.Validate(); err != nil {
		return err
	}

	if b.log == nil {
		log, err := logger.NewLoggerWithLevel(parsed.LogLevel)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
		}

		b.log = log
	}

	b.config = parsed
	b.executor = NewExecutor(b.log)
	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("log_level", parsed.LogLevel),
		zap.Duration("strategy_timeout", parsed.StrategyTimeout),
		zap.Uint32("wasm_memory_limit_pages", parsed.WasmMemoryLimitPages),
	)

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, series types.PriceSeries, def strategy.StrategyDefinition, params types.ParameterValues) (types.BacktestResult, error) {
	if err := b.preRunCheck(); err != nil {
		return types.BacktestResult{}, err
	}

	resolved := strategy.DefaultParameters(def).Merge(params)

	b.log.Debug("Running strategy",
		zap.String("strategy", def.Type),
		zap.Bool("custom", def.IsCustom()),
		zap.Int("samples", len(series)),
		zap.Any("params", resolved),
	)

	if def.IsCustom() && b.config.StrategyTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, b.config.StrategyTimeout)
		defer cancel()
	}

	trades, err := b.executor.Execute(ctx, series, def, resolved)
	if err != nil {
		b.log.Error("Strategy execution failed",
			zap.String("strategy", def.Type),
			zap.Error(err),
		)

		return types.BacktestResult{}, err
	}

	result := Evaluate(trades)

	b.log.Info("Backtest finished",
		zap.String("strategy", def.Type),
		zap.Int("total_trades", result.TotalTrades),
		zap.Float64("total_profit", result.TotalProfit),
		zap.Float64("win_rate", result.WinRate),
	)

	return result, nil
}

// Indicators implements engine.Engine.
func (b *BacktestEngineV1) Indicators(series types.PriceSeries, def strategy.StrategyDefinition, params types.ParameterValues) (types.CrossoverIndicators, error) {
	return CrossoverIndicators(series, strategy.DefaultParameters(def).Merge(params))
}

func (b *BacktestEngineV1) LoadStrategyFromFile(strategyPath string) (runtime.StrategyRuntime, error) {
	extension := filepath.Ext(strategyPath)

	switch extension {
	case ".wasm":
		strategyRuntime, err := wasm.NewStrategyWasmRuntime(strategyPath, wasm.WithMemoryLimitPages(b.config.WasmMemoryLimitPages))
		if err != nil {
			return nil, err
		}

		return strategyRuntime, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidStrategy, "unsupported strategy type: %s", extension)
	}
}

func (b *BacktestEngineV1) LoadStrategyFromBytes(strategyBytes []byte, strategyType engine.StrategyType) (runtime.StrategyRuntime, error) {
	switch strategyType {
	case engine.StrategyTypeWASM:
		strategyRuntime, err := wasm.NewStrategyWasmRuntimeFromBytes(strategyBytes, wasm.WithMemoryLimitPages(b.config.WasmMemoryLimitPages))
		if err != nil {
			return nil, err
		}

		return strategyRuntime, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidStrategy, "unsupported strategy type: %s", strategyType)
	}
}

func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		return errors.New(errors.ErrCodeBacktestNotInitialized, "backtest engine is not initialized")
	}

	return nil
}
