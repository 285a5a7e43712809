package engine

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	go_runtime "github.com/rxtech-lab/argo-backtest/internal/runtime/go"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ExecutorTestSuite struct {
	suite.Suite
	executor *Executor
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}

func (suite *ExecutorTestSuite) SetupTest() {
	suite.executor = NewExecutor(logger.NewNopLogger())
}

func seriesOf(prices ...float64) types.PriceSeries {
	series := make(types.PriceSeries, len(prices))
	for i, p := range prices {
		series[i] = types.PricePoint{
			Date:  fmt.Sprintf("2024-01-%02d", i+1),
			Price: p,
		}
	}

	return series
}

// rising, then falling, then rising again
var waveSeries = seriesOf(10, 11, 12, 13, 14, 15, 14, 13, 12, 11, 10, 11, 12, 13, 14, 15)

func (suite *ExecutorTestSuite) smaCrossover() strategy.StrategyDefinition {
	def, err := strategy.NewRegistry().Get(strategy.TypeSMACrossover)
	suite.Require().NoError(err)

	return def
}

func (suite *ExecutorTestSuite) TestSingleTradeOnWave() {
	trades, err := suite.executor.Execute(context.Background(), waveSeries, suite.smaCrossover(), types.ParameterValues{
		"shortPeriod": 2,
		"longPeriod":  3,
	})
	suite.Require().NoError(err)
	suite.Require().Len(trades, 1)

	trade := trades[0]
	suite.Equal("2024-01-07", trade.EntryDate)
	suite.Equal(14.0, trade.EntryPrice)
	suite.Equal("2024-01-12", trade.ExitDate)
	suite.Equal(11.0, trade.ExitPrice)
	suite.Equal(trade.ExitPrice-trade.EntryPrice, trade.Profit)
	suite.Equal(types.TradeDirectionLong, trade.Direction)
}

func (suite *ExecutorTestSuite) TestOpenPositionIsDiscarded() {
	// rising then falling: the averages cross once and the position is still open at the end
	series := seriesOf(1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1)

	trades, err := suite.executor.Execute(context.Background(), series, suite.smaCrossover(), types.ParameterValues{
		"shortPeriod": 2,
		"longPeriod":  3,
	})
	suite.Require().NoError(err)
	suite.NotNil(trades)
	suite.Empty(trades)
}

func (suite *ExecutorTestSuite) TestCrossFromExactTie() {
	// with periods 1 and 2, short[i] = p[i] and long[i] = (p[i]+p[i+1])/2, so short[i] == long[i]
	// exactly when p[i] == p[i+1]
	params := types.ParameterValues{"shortPeriod": 1, "longPeriod": 2}

	testCases := []struct {
		name     string
		series   types.PriceSeries
		expected types.Trade
	}{
		{
			// tie at i=0 (5 == 5), strict cross up at i=1, strict cross down at i=3
			name:   "entry after a tie",
			series: seriesOf(5, 5, 4, 3, 6),
			expected: types.Trade{
				EntryDate:  "2024-01-03",
				ExitDate:   "2024-01-05",
				EntryPrice: 4,
				ExitPrice:  6,
				Profit:     2,
				Direction:  types.TradeDirectionLong,
			},
		},
		{
			// strict cross up at i=1, tie at i=2 (2 == 2), strict cross down at i=3
			name:   "exit after a tie",
			series: seriesOf(1, 3, 2, 2, 5),
			expected: types.Trade{
				EntryDate:  "2024-01-03",
				ExitDate:   "2024-01-05",
				EntryPrice: 2,
				ExitPrice:  5,
				Profit:     3,
				Direction:  types.TradeDirectionLong,
			},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			trades, err := suite.executor.Execute(context.Background(), tc.series, suite.smaCrossover(), params)
			suite.Require().NoError(err)
			suite.Equal([]types.Trade{tc.expected}, trades)
		})
	}
}

func (suite *ExecutorTestSuite) TestNoTradeCases() {
	testCases := []struct {
		name   string
		series types.PriceSeries
		params types.ParameterValues
	}{
		{
			name:   "empty series",
			series: types.PriceSeries{},
			params: types.ParameterValues{},
		},
		{
			name:   "series shorter than the long period",
			series: seriesOf(1, 2, 3, 4, 5),
			params: types.ParameterValues{},
		},
		{
			name:   "constant series never crosses",
			series: seriesOf(5, 5, 5, 5, 5, 5, 5, 5, 5, 5),
			params: types.ParameterValues{"shortPeriod": 2, "longPeriod": 3},
		},
		{
			name:   "single point",
			series: seriesOf(42),
			params: types.ParameterValues{"shortPeriod": 1, "longPeriod": 1},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			trades, err := suite.executor.Execute(context.Background(), tc.series, suite.smaCrossover(), tc.params)
			suite.Require().NoError(err)
			suite.NotNil(trades)
			suite.Empty(trades)
		})
	}
}

func (suite *ExecutorTestSuite) TestPeriodResolution() {
	expected, err := suite.executor.Execute(context.Background(), waveSeries, suite.smaCrossover(), types.ParameterValues{
		"shortPeriod": 2,
		"longPeriod":  3,
	})
	suite.Require().NoError(err)
	suite.Require().Len(expected, 1)

	testCases := []struct {
		name   string
		params types.ParameterValues
	}{
		{name: "period and slowPeriod", params: types.ParameterValues{"period": 2, "slowPeriod": 3}},
		{name: "fastPeriod and slowPeriod", params: types.ParameterValues{"fastPeriod": 2, "slowPeriod": 3}},
		{name: "shortPeriod wins over period", params: types.ParameterValues{"shortPeriod": 2, "period": 7, "longPeriod": 3}},
		{name: "longPeriod wins over slowPeriod", params: types.ParameterValues{"shortPeriod": 2, "longPeriod": 3, "slowPeriod": 9}},
		{name: "zero falls through", params: types.ParameterValues{"shortPeriod": 0, "period": 2, "longPeriod": 0, "slowPeriod": 3}},
		{name: "NaN falls through", params: types.ParameterValues{"shortPeriod": math.NaN(), "fastPeriod": 2, "longPeriod": math.NaN(), "slowPeriod": 3}},
		{name: "fractions are truncated", params: types.ParameterValues{"shortPeriod": 2.9, "longPeriod": 3.2}},
		{name: "unrelated keys are ignored", params: types.ParameterValues{"shortPeriod": 2, "longPeriod": 3, "overbought": 70}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			trades, err := suite.executor.Execute(context.Background(), waveSeries, suite.smaCrossover(), tc.params)
			suite.Require().NoError(err)
			suite.Equal(expected, trades)
		})
	}
}

func (suite *ExecutorTestSuite) TestFallbackDefaults() {
	indicators, err := CrossoverIndicators(waveSeries, types.ParameterValues{})
	suite.Require().NoError(err)
	suite.Equal(defaultShortPeriod, indicators.ShortPeriod)
	suite.Equal(defaultLongPeriod, indicators.LongPeriod)
}

func (suite *ExecutorTestSuite) TestBuiltinFallbackToCrossover() {
	registry := strategy.NewRegistry()

	rsi, err := registry.Get(strategy.TypeRSI)
	suite.Require().NoError(err)

	macd, err := registry.Get(strategy.TypeMACD)
	suite.Require().NoError(err)

	sma := suite.smaCrossover()
	params := types.ParameterValues{"period": 2, "fastPeriod": 2, "slowPeriod": 3}

	smaTrades, err := suite.executor.Execute(context.Background(), waveSeries, sma, params)
	suite.Require().NoError(err)

	for _, def := range []strategy.StrategyDefinition{rsi, macd} {
		trades, err := suite.executor.Execute(context.Background(), waveSeries, def, params)
		suite.Require().NoError(err)
		suite.Equal(smaTrades, trades, def.Type)
	}
}

func (suite *ExecutorTestSuite) TestInvalidPeriods() {
	testCases := []struct {
		name   string
		params types.ParameterValues
	}{
		{name: "negative short period", params: types.ParameterValues{"shortPeriod": -1}},
		{name: "fractional short period", params: types.ParameterValues{"shortPeriod": 0.5}},
		{name: "negative long period", params: types.ParameterValues{"longPeriod": -5}},
		{name: "infinite long period", params: types.ParameterValues{"longPeriod": math.Inf(1)}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			trades, err := suite.executor.Execute(context.Background(), waveSeries, suite.smaCrossover(), tc.params)
			suite.Nil(trades)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
		})
	}
}

func (suite *ExecutorTestSuite) TestHugePeriodProducesNoTrades() {
	trades, err := suite.executor.Execute(context.Background(), waveSeries, suite.smaCrossover(), types.ParameterValues{
		"shortPeriod": 2,
		"longPeriod":  1e12,
	})
	suite.Require().NoError(err)
	suite.Empty(trades)
}

func (suite *ExecutorTestSuite) TestIdempotent() {
	series := mocks.GenerateDays(365)
	params := types.ParameterValues{"shortPeriod": 5, "longPeriod": 20}

	first, err := suite.executor.Execute(context.Background(), series, suite.smaCrossover(), params)
	suite.Require().NoError(err)

	second, err := suite.executor.Execute(context.Background(), series, suite.smaCrossover(), params)
	suite.Require().NoError(err)

	suite.Equal(first, second)
	suite.Equal(Evaluate(first), Evaluate(second))
}

func (suite *ExecutorTestSuite) TestCustomStrategy() {
	expected := []types.Trade{
		{EntryDate: "2024-01-01", ExitDate: "2024-01-02", EntryPrice: 10, ExitPrice: 11, Profit: 1, Direction: types.TradeDirectionLong},
	}

	var received types.ParameterValues

	def := strategy.StrategyDefinition{
		Type: strategy.NewCustomStrategyType(),
		Name: "Custom",
		Runtime: go_runtime.NewGoRuntime("custom", func(series types.PriceSeries, params types.ParameterValues) ([]types.Trade, error) {
			received = params
			params["mutated"] = 1

			return expected, nil
		}),
	}

	params := types.ParameterValues{"threshold": 3}

	trades, err := suite.executor.Execute(context.Background(), waveSeries, def, params)
	suite.Require().NoError(err)
	suite.Equal(expected, trades)
	suite.Equal(3.0, received["threshold"])
	suite.NotContains(params, "mutated")
}

func (suite *ExecutorTestSuite) TestCustomStrategyFailsSoft() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	erroring := mocks.NewMockStrategyRuntime(ctrl)
	erroring.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("boom")).Times(1)
	erroring.EXPECT().Name().Return("erroring").AnyTimes()

	panicking := mocks.NewMockStrategyRuntime(ctrl)
	panicking.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ types.PriceSeries, _ types.ParameterValues) ([]types.Trade, error) {
			panic("boom")
		},
	).Times(1)
	panicking.EXPECT().Name().Return("panicking").AnyTimes()

	returnsNil := mocks.NewMockStrategyRuntime(ctrl)
	returnsNil.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	returnsNil.EXPECT().Name().Return("nil").AnyTimes()

	for _, rt := range []*mocks.MockStrategyRuntime{erroring, panicking, returnsNil} {
		def := strategy.StrategyDefinition{Type: strategy.NewCustomStrategyType(), Name: "Broken", Runtime: rt}

		trades, err := suite.executor.Execute(context.Background(), waveSeries, def, types.ParameterValues{})
		suite.Require().NoError(err)
		suite.NotNil(trades)
		suite.Empty(trades)

		result := Evaluate(trades)
		suite.Equal(0, result.TotalTrades)
		suite.Equal(0.0, result.WinRate)
		suite.Equal(0.0, result.TotalProfit)
		suite.Equal(0.0, result.MaxDrawdown)
		suite.True(result.ProfitFactor.IsInfinite())
	}
}

func (suite *ExecutorTestSuite) TestCrossoverIndicators() {
	indicators, err := CrossoverIndicators(seriesOf(1, 2, 3, 4, 5), types.ParameterValues{"shortPeriod": 2, "longPeriod": 3})
	suite.Require().NoError(err)

	suite.Equal(2, indicators.ShortPeriod)
	suite.Equal(3, indicators.LongPeriod)
	suite.Equal([]optional.Option[float64]{
		optional.None[float64](), optional.Some(1.5), optional.Some(2.5), optional.Some(3.5), optional.Some(4.5),
	}, indicators.ShortSMA)
	suite.Equal([]optional.Option[float64]{
		optional.None[float64](), optional.None[float64](), optional.Some(2.0), optional.Some(3.0), optional.Some(4.0),
	}, indicators.LongSMA)

	_, err = CrossoverIndicators(waveSeries, types.ParameterValues{"shortPeriod": -3})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *ExecutorTestSuite) TestCrossoverIndicatorsLongerThanSeries() {
	indicators, err := CrossoverIndicators(seriesOf(1, 2, 3), types.ParameterValues{"shortPeriod": 2, "longPeriod": 1e12})
	suite.Require().NoError(err)

	suite.Len(indicators.ShortSMA, 3)
	suite.Len(indicators.LongSMA, 3)

	for _, v := range indicators.LongSMA {
		suite.True(v.IsNone())
	}
}
