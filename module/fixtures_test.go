package module

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-bootstrap/errors"
	"github.com/wippyai/wasm-bootstrap/wasm/wasmtest"
)

func emptyModule() []byte {
	return (&wasmtest.Module{}).Encode()
}

// trappingModule has a start function that executes unreachable.
func trappingModule() []byte {
	return (&wasmtest.Module{
		Types: []wasmtest.FuncType{{}},
		Funcs: []uint32{0},
		Start: wasmtest.Index(0),
		Code:  []wasmtest.FuncBody{{Code: []byte{wasmtest.OpUnreachable, wasmtest.OpEnd}}},
	}).Encode()
}

// spinningModule exports a _start that never returns.
func spinningModule() []byte {
	return (&wasmtest.Module{
		Types:   []wasmtest.FuncType{{}},
		Funcs:   []uint32{0},
		Exports: []wasmtest.Export{{Name: "_start", Idx: 0}},
		Code: []wasmtest.FuncBody{{Code: []byte{
			wasmtest.OpLoop, wasmtest.BlockEmpty,
			wasmtest.OpBr, 0x00,
			wasmtest.OpEnd,
			wasmtest.OpEnd,
		}}},
	}).Encode()
}

// importingModule imports a host function nobody provides.
func importingModule() []byte {
	return (&wasmtest.Module{
		Types:   []wasmtest.FuncType{{}},
		Imports: []wasmtest.Import{{Module: "env", Name: "missing", TypeIdx: 0}},
	}).Encode()
}

// procExitModule exports a _start that calls WASI proc_exit(code), plus the
// memory WASI hosts expect to find.
func procExitModule(code byte) []byte {
	return (&wasmtest.Module{
		Types: []wasmtest.FuncType{
			{Params: []wasmtest.ValType{wasmtest.ValI32}},
			{},
		},
		Imports:     []wasmtest.Import{{Module: "wasi_snapshot_preview1", Name: "proc_exit", TypeIdx: 0}},
		Funcs:       []uint32{1},
		MemoryPages: wasmtest.Index(1),
		Exports: []wasmtest.Export{
			{Name: "_start", Idx: 1},
			{Name: "memory", Kind: wasmtest.KindMemory, Idx: 0},
		},
		Code: []wasmtest.FuncBody{{Code: []byte{
			wasmtest.OpI32Const, code,
			wasmtest.OpCall, 0x00,
			wasmtest.OpEnd,
		}}},
	}).Encode()
}

// failureCase is a module every engine must reject the same way.
type failureCase struct {
	name             string
	data             []byte
	memoryLimitPages uint32
	phase            errors.Phase
	kind             errors.Kind
	detail           string
}

func failureCases() []failureCase {
	return []failureCase{
		{
			name:   "bad magic",
			data:   []byte("not a wasm module"),
			phase:  errors.PhaseCompile,
			kind:   errors.KindInvalidData,
			detail: "bad magic number",
		},
		{
			name:  "component binary",
			data:  []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00},
			phase: errors.PhaseCompile,
			kind:  errors.KindUnsupported,
		},
		{
			name:  "malformed body",
			data:  append(emptyModule(), 0x01, 0xFF),
			phase: errors.PhaseCompile,
			kind:  errors.KindInvalidData,
		},
		{
			name:  "start function traps",
			data:  trappingModule(),
			phase: errors.PhaseInstantiate,
			kind:  errors.KindInstantiation,
		},
		{
			name:  "unresolved import",
			data:  importingModule(),
			phase: errors.PhaseInstantiate,
			kind:  errors.KindInstantiation,
		},
		{
			name:  "wasi import without wasi",
			data:  procExitModule(0),
			phase: errors.PhaseInstantiate,
			kind:  errors.KindInstantiation,
		},
		{
			name:             "memory limit above 4GB",
			data:             emptyModule(),
			memoryLimitPages: 70000,
			phase:            errors.PhaseInstantiate,
			kind:             errors.KindInvalidInput,
			detail:           "exceeds",
		},
	}
}

// checkFailure asserts Initialize failed with no handle and the case's
// phase, kind and module name.
func checkFailure(t *testing.T, tt failureCase, h Handle, err error) {
	t.Helper()

	if err == nil {
		h.Close(context.Background())
		t.Fatal("expected error")
	}
	if h != nil {
		t.Errorf("handle should be nil on failure, got %T", h)
	}

	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error %v is not *errors.Error", err)
	}
	if e.Phase != tt.phase || e.Kind != tt.kind {
		t.Errorf("got [%s] %s, want [%s] %s", e.Phase, e.Kind, tt.phase, tt.kind)
	}
	if e.Module != "app.wasm" {
		t.Errorf("Module = %q, want app.wasm", e.Module)
	}
	if tt.detail != "" && !strings.Contains(err.Error(), tt.detail) {
		t.Errorf("error %q does not contain %q", err, tt.detail)
	}
}
