// Package wasmtest assembles minimal WebAssembly strategy modules for tests, so no
// toolchain is needed to exercise the plugin boundary.
package wasmtest

import (
	"github.com/rxtech-lab/argo-backtest/pkg/strategy"
)

// Offsets used by the hand-assembled test modules.
const (
	VersionOffset  = 0
	ResponseOffset = 256
	HeapOffset     = 4096
)

// WasmHeader is the magic number and version every module starts with.
var WasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func uleb(v uint64) []byte {
	var out []byte

	for {
		b := byte(v & 0x7f)
		v >>= 7

		if v == 0 {
			return append(out, b)
		}

		out = append(out, b|0x80)
	}
}

func sleb(v int64) []byte {
	var out []byte

	for {
		b := byte(v & 0x7f)
		v >>= 7

		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}

		out = append(out, b|0x80)
	}
}

func section(id byte, payload []byte) []byte {
	out := append([]byte{id}, uleb(uint64(len(payload)))...)

	return append(out, payload...)
}

func vec(items ...[]byte) []byte {
	out := uleb(uint64(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}

	return out
}

func name(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func body(instructions ...byte) []byte {
	code := append([]byte{0x00}, instructions...)
	code = append(code, 0x0b)

	return append(uleb(uint64(len(code))), code...)
}

func i64Const(v uint64) []byte {
	return append([]byte{0x42}, sleb(int64(v))...)
}

func dataSegment(offset int64, data []byte) []byte {
	segment := append([]byte{0x00, 0x41}, sleb(offset)...)
	segment = append(segment, 0x0b)
	segment = append(segment, uleb(uint64(len(data)))...)

	return append(segment, data...)
}

// BuildStrategyModule assembles a module that follows the plugin ABI. The engine version
// export points at pluginVersion, malloc always returns HeapOffset and execute runs the
// given instructions with response placed at ResponseOffset.
func BuildStrategyModule(pluginVersion string, execute []byte, response []byte) []byte {
	module := append([]byte{}, WasmHeader...)

	module = append(module, section(1, vec(
		[]byte{0x60, 0x00, 0x01, 0x7e},             // () -> i64
		[]byte{0x60, 0x01, 0x7f, 0x01, 0x7f},       // (i32) -> i32
		[]byte{0x60, 0x01, 0x7f, 0x00},             // (i32) -> ()
		[]byte{0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7e}, // (i32, i32) -> i64
	))...)
	module = append(module, section(3, vec([]byte{0}, []byte{1}, []byte{2}, []byte{3}))...)
	module = append(module, section(5, vec([]byte{0x00, 0x01}))...)
	module = append(module, section(7, vec(
		append(name("memory"), 0x02, 0x00),
		append(name(strategy.ExportEngineVersion), 0x00, 0x00),
		append(name(strategy.ExportMalloc), 0x00, 0x01),
		append(name(strategy.ExportFree), 0x00, 0x02),
		append(name(strategy.ExportExecute), 0x00, 0x03),
	))...)
	module = append(module, section(10, vec(
		body(i64Const(strategy.PackPointer(VersionOffset, uint32(len(pluginVersion))))...),
		body(append([]byte{0x41}, sleb(HeapOffset)...)...),
		body(),
		body(execute...),
	))...)
	module = append(module, section(11, vec(
		dataSegment(VersionOffset, []byte(pluginVersion)),
		dataSegment(ResponseOffset, response),
	))...)

	return module
}

// ReturnResponse is an execute body returning response from ResponseOffset.
func ReturnResponse(response []byte) []byte {
	return i64Const(strategy.PackPointer(ResponseOffset, uint32(len(response))))
}

// Execute bodies for failure cases.
var (
	TrapInstructions     = []byte{0x00}                               // unreachable
	FailureInstructions  = i64Const(0)                                // reports failure
	InfiniteInstructions = []byte{0x03, 0x40, 0x0c, 0x00, 0x0b, 0x00} // loop br 0 end unreachable
)

// ModuleReturning builds a module reporting engineVersion whose execute export always
// answers with response.
func ModuleReturning(engineVersion string, response []byte) []byte {
	return BuildStrategyModule(engineVersion, ReturnResponse(response), response)
}
