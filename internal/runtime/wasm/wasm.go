package wasm

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-backtest/internal/runtime"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/strategy"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// requiredExports lists the functions every strategy module must export.
var requiredExports = []string{
	strategy.ExportMalloc,
	strategy.ExportFree,
	strategy.ExportEngineVersion,
	strategy.ExportExecute,
}

// StrategyWasmRuntime is a runtime for a strategy that is written in WebAssembly.
// Every Execute call gets its own wazero runtime and module instance, so nothing a
// plugin does survives the call.
type StrategyWasmRuntime struct {
	name             string
	wasmBytes        []byte
	memoryLimitPages uint32
}

// Option configures a StrategyWasmRuntime.
type Option func(*StrategyWasmRuntime)

// WithName sets the name reported by Name.
func WithName(name string) Option {
	return func(s *StrategyWasmRuntime) {
		s.name = name
	}
}

// WithMemoryLimitPages caps the linear memory of the plugin (64KiB pages). Zero keeps the wazero default.
func WithMemoryLimitPages(pages uint32) Option {
	return func(s *StrategyWasmRuntime) {
		s.memoryLimitPages = pages
	}
}

// NewStrategyWasmRuntime creates a new StrategyWasmRuntime with `wasmFilePath` as the strategy file.
func NewStrategyWasmRuntime(wasmFilePath string, opts ...Option) (runtime.StrategyRuntime, error) {
	if _, err := os.Stat(wasmFilePath); os.IsNotExist(err) {
		return nil, errors.Newf(errors.ErrCodeStrategyLoadFailed, "file does not exist: %s", wasmFilePath)
	}

	wasmBytes, err := os.ReadFile(wasmFilePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStrategyLoadFailed, err, "failed to read %s", wasmFilePath)
	}

	opts = append([]Option{WithName(filepath.Base(wasmFilePath))}, opts...)

	return NewStrategyWasmRuntimeFromBytes(wasmBytes, opts...)
}

// NewStrategyWasmRuntimeFromBytes creates a StrategyWasmRuntime from module bytes. The module is
// compiled once here so malformed plugins are rejected before they are registered.
func NewStrategyWasmRuntimeFromBytes(wasmBytes []byte, opts ...Option) (runtime.StrategyRuntime, error) {
	s := &StrategyWasmRuntime{
		name:             "wasm-strategy",
		wasmBytes:        wasmBytes,
		memoryLimitPages: 0,
	}

	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()

	r := s.newRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStrategy, "failed to compile strategy module", err)
	}

	exported := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		if _, ok := exported[name]; !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidStrategy, "%s is not exported", name)
		}
	}

	return s, nil
}

// Name implements runtime.StrategyRuntime.
func (s *StrategyWasmRuntime) Name() string {
	return s.name
}

// Execute implements runtime.StrategyRuntime.
func (s *StrategyWasmRuntime) Execute(ctx context.Context, series types.PriceSeries, params types.ParameterValues) ([]types.Trade, error) {
	payload, err := strategy.EncodeRequest(series, params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyRuntimeError, "failed to encode request", err)
	}

	r := s.newRuntime(ctx)
	defer r.Close(context.Background())

	module, err := s.instantiate(ctx, r)
	if err != nil {
		return nil, err
	}

	if err := checkEngineVersion(ctx, module); err != nil {
		return nil, err
	}

	malloc := module.ExportedFunction(strategy.ExportMalloc)
	free := module.ExportedFunction(strategy.ExportFree)
	execute := module.ExportedFunction(strategy.ExportExecute)

	results, err := malloc.Call(ctx, uint64(len(payload)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyRuntimeError, "malloc failed", err)
	}

	inPtr := uint32(results[0])
	defer free.Call(context.Background(), uint64(inPtr)) //nolint:errcheck // the runtime is closed right after

	if !module.Memory().Write(inPtr, payload) {
		return nil, errors.Newf(errors.ErrCodeStrategyRuntimeError, "request of %d bytes does not fit at %d", len(payload), inPtr)
	}

	results, err = execute.Call(ctx, uint64(inPtr), uint64(len(payload)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy execution failed", err)
	}

	if results[0] == 0 {
		return nil, errors.New(errors.ErrCodeStrategyRuntimeError, "strategy reported a failure")
	}

	outPtr, outSize := strategy.UnpackPointer(results[0])

	response, ok := module.Memory().Read(outPtr, outSize)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeStrategyRuntimeError, "response [%d, +%d) is out of memory range", outPtr, outSize)
	}

	trades, err := strategy.DecodeTrades(response)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyRuntimeError, "invalid strategy response", err)
	}

	return trades, nil
}

func (s *StrategyWasmRuntime) newRuntime(ctx context.Context) wazero.Runtime {
	config := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if s.memoryLimitPages > 0 {
		config = config.WithMemoryLimitPages(s.memoryLimitPages)
	}

	return wazero.NewRuntimeWithConfig(ctx, config)
}

func (s *StrategyWasmRuntime) instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyLoadFailed, "failed to instantiate WASI", err)
	}

	compiled, err := r.CompileModule(ctx, s.wasmBytes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStrategy, "failed to compile strategy module", err)
	}

	// Go plugins are built as reactors (-buildmode=c-shared) and expose _initialize.
	config := wazero.NewModuleConfig().WithName("").WithStartFunctions("_initialize")

	module, err := r.InstantiateModule(ctx, compiled, config)
	if err != nil {
		if exitErr, ok := err.(*sys.ExitError); ok && exitErr.ExitCode() != 0 {
			return nil, errors.Newf(errors.ErrCodeStrategyLoadFailed, "unexpected exit_code: %d", exitErr.ExitCode())
		} else if !ok {
			return nil, errors.Wrap(errors.ErrCodeStrategyLoadFailed, "failed to instantiate strategy module", err)
		}
	}

	if module == nil || module.Memory() == nil {
		return nil, errors.New(errors.ErrCodeInvalidStrategy, "strategy module does not export memory")
	}

	return module, nil
}

func checkEngineVersion(ctx context.Context, module api.Module) error {
	results, err := module.ExportedFunction(strategy.ExportEngineVersion).Call(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "failed to read plugin engine version", err)
	}

	ptr, size := strategy.UnpackPointer(results[0])

	raw, ok := module.Memory().Read(ptr, size)
	if !ok {
		return errors.New(errors.ErrCodeStrategyRuntimeError, "plugin engine version is out of memory range")
	}

	return version.CheckVersionCompatibility(version.GetVersion(), string(raw))
}
