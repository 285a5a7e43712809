//go:build wasip1

package strategy

import (
	wasm "github.com/knqyf263/go-plugin/wasm"

	"github.com/rxtech-lab/argo-backtest/internal/version"
)

var registered Func

// RegisterStrategy sets the strategy body exported by this plugin.
func RegisterStrategy(fn Func) {
	registered = fn
}

//go:wasmexport backtest_strategy_engine_version
func _backtest_strategy_engine_version() uint64 {
	// Use the version from internal/version which is set when the engine is built/released
	ptr, size := wasm.ByteToPtr([]byte(version.GetVersion()))

	return PackPointer(ptr, size)
}

// A zero return tells the host the invocation failed.
//
//go:wasmexport backtest_strategy_execute
func _backtest_strategy_execute(ptr, size uint32) uint64 {
	if registered == nil {
		return 0
	}

	series, params, err := DecodeRequest(wasm.PtrToByte(ptr, size))
	if err != nil {
		return 0
	}

	trades, err := registered(series, params)
	if err != nil {
		return 0
	}

	response, err := EncodeTrades(trades)
	if err != nil {
		return 0
	}

	outPtr, outSize := wasm.ByteToPtr(response)

	return PackPointer(outPtr, outSize)
}
