package engine

import (
	"context"
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultShortPeriod = 10
	defaultLongPeriod  = 20
)

// Parameter keys consulted, in priority order, for the crossover periods.
var (
	shortPeriodKeys = []string{"shortPeriod", "period", "fastPeriod"}
	longPeriodKeys  = []string{"longPeriod", "slowPeriod"}
)

// Executor turns a price series and a strategy definition into closed trades.
type Executor struct {
	log *logger.Logger
}

// NewExecutor creates an executor that reports custom strategy failures to log.
func NewExecutor(log *logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Executor{
		log: log,
	}
}

// Execute runs def over series. Custom bodies never fail the call: any error or panic
// they raise is logged and yields no trades. The built-in rule only fails on a period below 1.
func (e *Executor) Execute(ctx context.Context, series types.PriceSeries, def strategy.StrategyDefinition, params types.ParameterValues) ([]types.Trade, error) {
	if def.IsCustom() {
		return e.executeCustom(ctx, series, def, params), nil
	}

	shortPeriod, longPeriod, err := resolveCrossoverPeriods(params)
	if err != nil {
		return nil, err
	}

	return executeCrossover(series, shortPeriod, longPeriod)
}

func (e *Executor) executeCustom(ctx context.Context, series types.PriceSeries, def strategy.StrategyDefinition, params types.ParameterValues) (trades []types.Trade) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("Custom strategy panicked, no trades produced",
				zap.String("strategy", def.Type),
				zap.Any("panic", r),
			)

			trades = []types.Trade{}
		}
	}()

	result, err := def.Runtime.Execute(ctx, series, params.Clone())
	if err != nil {
		e.log.Warn("Custom strategy failed, no trades produced",
			zap.String("strategy", def.Type),
			zap.String("runtime", def.Runtime.Name()),
			zap.Error(err),
		)

		return []types.Trade{}
	}

	if result == nil {
		return []types.Trade{}
	}

	return result
}

// CrossoverIndicators computes the aligned short and long moving averages for series using
// the same period resolution as the crossover rule.
func CrossoverIndicators(series types.PriceSeries, params types.ParameterValues) (types.CrossoverIndicators, error) {
	shortPeriod, longPeriod, err := resolveCrossoverPeriods(params)
	if err != nil {
		return types.CrossoverIndicators{}, err
	}

	prices := series.Prices()

	shortSMA, err := indicator.MovingAverage(prices, shortPeriod)
	if err != nil {
		return types.CrossoverIndicators{}, err
	}

	longSMA, err := indicator.MovingAverage(prices, longPeriod)
	if err != nil {
		return types.CrossoverIndicators{}, err
	}

	// a window longer than the series pads exactly len(series) entries
	limit := len(prices) + 1

	return types.CrossoverIndicators{
		ShortPeriod: shortPeriod,
		LongPeriod:  longPeriod,
		ShortSMA:    indicator.AlignMovingAverage(shortSMA, min(shortPeriod, limit)),
		LongSMA:     indicator.AlignMovingAverage(longSMA, min(longPeriod, limit)),
	}, nil
}

// executeCrossover applies the moving average crossover rule. Index i of both averages is
// compared directly, and prices are read at i+offset with offset = max(short, long)-1.
// A position still open at the end of the series is dropped.
func executeCrossover(series types.PriceSeries, shortPeriod, longPeriod int) ([]types.Trade, error) {
	prices := series.Prices()

	shortSMA, err := indicator.MovingAverage(prices, shortPeriod)
	if err != nil {
		return nil, err
	}

	longSMA, err := indicator.MovingAverage(prices, longPeriod)
	if err != nil {
		return nil, err
	}

	trades := []types.Trade{}
	inPosition := false
	entryPrice := 0.0
	entryDate := ""
	offset := max(shortPeriod, longPeriod) - 1

	for i := 1; i < len(shortSMA); i++ {
		// the long average has no sample here, nothing can cross from now on
		if i >= len(longSMA) {
			break
		}

		prevShort, prevLong := shortSMA[i-1], longSMA[i-1]
		currShort, currLong := shortSMA[i], longSMA[i]

		if !inPosition && prevShort <= prevLong && currShort > currLong {
			inPosition = true
			entryPrice = prices[i+offset]
			entryDate = series[i+offset].Date
		} else if inPosition && prevShort >= prevLong && currShort < currLong {
			exitPrice := prices[i+offset]
			trades = append(trades, types.Trade{
				EntryDate:  entryDate,
				ExitDate:   series[i+offset].Date,
				EntryPrice: entryPrice,
				ExitPrice:  exitPrice,
				Profit:     types.ProfitFor(types.TradeDirectionLong, entryPrice, exitPrice),
				Direction:  types.TradeDirectionLong,
			})
			inPosition = false
		}
	}

	return trades, nil
}

func resolveCrossoverPeriods(params types.ParameterValues) (int, int, error) {
	shortPeriod, err := toPeriod(resolveParameter(params, defaultShortPeriod, shortPeriodKeys...))
	if err != nil {
		return 0, 0, err
	}

	longPeriod, err := toPeriod(resolveParameter(params, defaultLongPeriod, longPeriodKeys...))
	if err != nil {
		return 0, 0, err
	}

	return shortPeriod, longPeriod, nil
}

// resolveParameter returns the first of keys set to a value other than 0 or NaN, else fallback.
func resolveParameter(params types.ParameterValues, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := params[key]; ok && v != 0 && !math.IsNaN(v) {
			return v
		}
	}

	return fallback
}

// toPeriod truncates a parameter value to a window length.
func toPeriod(v float64) (int, error) {
	if math.IsInf(v, 0) || v < 1 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be at least 1, got %v", v)
	}

	if v > math.MaxInt32 {
		return math.MaxInt32, nil
	}

	return int(v), nil
}
