package wasm

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/runtime/wasm/wasmtest"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/strategy"
	"github.com/stretchr/testify/suite"
)

type WasmRuntimeTestSuite struct {
	suite.Suite
	series types.PriceSeries
	params types.ParameterValues
}

func TestWasmRuntimeSuite(t *testing.T) {
	suite.Run(t, new(WasmRuntimeTestSuite))
}

func (suite *WasmRuntimeTestSuite) SetupTest() {
	suite.series = types.PriceSeries{
		{Date: "2024-01-01", Price: 100},
		{Date: "2024-01-02", Price: 101},
		{Date: "2024-01-03", Price: 99},
	}
	suite.params = types.ParameterValues{"period": 14}
}

func (suite *WasmRuntimeTestSuite) encodedTrades(trades []types.Trade) []byte {
	data, err := strategy.EncodeTrades(trades)
	suite.Require().NoError(err)

	return data
}

func (suite *WasmRuntimeTestSuite) TestExecuteReturnsTrades() {
	expected := []types.Trade{
		{EntryDate: "2024-01-01", ExitDate: "2024-01-02", EntryPrice: 100, ExitPrice: 101, Profit: 1, Direction: types.TradeDirectionLong},
		{EntryDate: "2024-01-02", ExitDate: "2024-01-03", EntryPrice: 101, ExitPrice: 99, Profit: 2, Direction: types.TradeDirectionShort},
	}
	response := suite.encodedTrades(expected)

	runtime, err := NewStrategyWasmRuntimeFromBytes(wasmtest.BuildStrategyModule(version.GetVersion(), wasmtest.ReturnResponse(response), response), WithName("fixed"))
	suite.Require().NoError(err)
	suite.Equal("fixed", runtime.Name())

	trades, err := runtime.Execute(context.Background(), suite.series, suite.params)
	suite.Require().NoError(err)
	suite.Equal(expected, trades)

	// a second call gets a fresh instance and the same answer
	again, err := runtime.Execute(context.Background(), suite.series, suite.params)
	suite.Require().NoError(err)
	suite.Equal(trades, again)
}

func (suite *WasmRuntimeTestSuite) TestExecuteFailures() {
	validResponse := suite.encodedTrades(nil)

	testCases := []struct {
		name         string
		module       []byte
		expectedCode errors.ErrorCode
	}{
		{
			name:         "trap",
			module:       wasmtest.BuildStrategyModule("main", wasmtest.TrapInstructions, nil),
			expectedCode: errors.ErrCodeStrategyRuntimeError,
		},
		{
			name:         "reported failure",
			module:       wasmtest.BuildStrategyModule("main", wasmtest.FailureInstructions, nil),
			expectedCode: errors.ErrCodeStrategyRuntimeError,
		},
		{
			name:         "undecodable response",
			module:       wasmtest.BuildStrategyModule("main", wasmtest.ReturnResponse([]byte{0xff, 0xff, 0xff}), []byte{0xff, 0xff, 0xff}),
			expectedCode: errors.ErrCodeStrategyRuntimeError,
		},
		{
			name:         "incompatible engine version",
			module:       wasmtest.BuildStrategyModule("v99.0.0", wasmtest.ReturnResponse(validResponse), validResponse),
			expectedCode: errors.ErrCodeVersionMismatch,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			runtime, err := NewStrategyWasmRuntimeFromBytes(tc.module)
			suite.Require().NoError(err)

			trades, err := runtime.Execute(context.Background(), suite.series, suite.params)
			suite.Nil(trades)
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.expectedCode), err.Error())
		})
	}
}

func (suite *WasmRuntimeTestSuite) TestExecuteStopsOnContextDeadline() {
	runtime, err := NewStrategyWasmRuntimeFromBytes(wasmtest.BuildStrategyModule("main", wasmtest.InfiniteInstructions, nil))
	suite.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = runtime.Execute(ctx, suite.series, suite.params)
	suite.Error(err)
}

func (suite *WasmRuntimeTestSuite) TestRejectsMalformedModules() {
	testCases := []struct {
		name   string
		module []byte
	}{
		{name: "empty bytes", module: []byte{}},
		{name: "not wasm", module: []byte("function(data, params) { return [] }")},
		{name: "valid module without exports", module: wasmtest.WasmHeader},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			runtime, err := NewStrategyWasmRuntimeFromBytes(tc.module)
			suite.Nil(runtime)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidStrategy))
		})
	}
}

func (suite *WasmRuntimeTestSuite) TestNewStrategyWasmRuntimeFromFile() {
	response := suite.encodedTrades(nil)
	path := filepath.Join(suite.T().TempDir(), "empty.wasm")
	suite.Require().NoError(os.WriteFile(path, wasmtest.BuildStrategyModule("main", wasmtest.ReturnResponse(response), response), 0644))

	runtime, err := NewStrategyWasmRuntime(path, WithMemoryLimitPages(16))
	suite.Require().NoError(err)
	suite.Equal("empty.wasm", runtime.Name())

	trades, err := runtime.Execute(context.Background(), suite.series, suite.params)
	suite.Require().NoError(err)
	suite.Empty(trades)
}

func (suite *WasmRuntimeTestSuite) TestNewStrategyWasmRuntimeMissingFile() {
	_, err := NewStrategyWasmRuntime(filepath.Join(suite.T().TempDir(), "missing.wasm"))
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyLoadFailed))
}
