// Package wasmtest builds small core WebAssembly modules for tests.
//
// It encodes only what startup tests need: function types, function
// imports, one memory, exports, a start function and raw code bodies.
//
//	data := (&wasmtest.Module{
//	    Types: []wasmtest.FuncType{{}},
//	    Funcs: []uint32{0},
//	    Start: wasmtest.Index(0),
//	    Code:  []wasmtest.FuncBody{{Code: []byte{wasmtest.OpUnreachable, wasmtest.OpEnd}}},
//	}).Encode()
package wasmtest

import (
	"encoding/binary"

	"github.com/wippyai/wasm-bootstrap/wasm"
)

// Section IDs in the order they must appear.
const (
	SectionType     byte = 1
	SectionImport   byte = 2
	SectionFunction byte = 3
	SectionMemory   byte = 5
	SectionExport   byte = 7
	SectionStart    byte = 8
	SectionCode     byte = 10
)

// Descriptor kinds for imports and exports.
const (
	KindFunc   byte = 0
	KindMemory byte = 2
)

// ValType is a core value type encoding.
type ValType byte

const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
)

// Encoding bytes used by generated bodies.
const (
	FuncTypeByte  byte = 0x60
	BlockEmpty    byte = 0x40
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpLoop        byte = 0x03
	OpBr          byte = 0x0C
	OpCall        byte = 0x10
	OpI32Const    byte = 0x41
	OpEnd         byte = 0x0B
)

// Module describes a core module to encode.
type Module struct {
	Start       *uint32
	MemoryPages *uint32 // minimum pages of the single memory, nil for none
	Types       []FuncType
	Imports     []Import
	Funcs       []uint32 // Type indices for declared functions
	Exports     []Export
	Code        []FuncBody
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import.
type Import struct {
	Module  string
	Name    string
	TypeIdx uint32
}

// Export exports a function (Kind 0, the default) or the memory.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody is the code of a declared function, including the final end opcode.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte
}

// LocalEntry declares Count locals of one type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// Index returns a pointer to i, for Module.Start and Module.MemoryPages.
func Index(i uint32) *uint32 {
	return &i
}

// Encode returns the module's binary encoding.
func (m *Module) Encode() []byte {
	out := binary.LittleEndian.AppendUint32(nil, wasm.Magic)
	out = binary.LittleEndian.AppendUint32(out, wasm.Version)

	if len(m.Types) > 0 {
		sec := uleb(nil, uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec = append(sec, FuncTypeByte)
			sec = valTypes(sec, ft.Params)
			sec = valTypes(sec, ft.Results)
		}
		out = section(out, SectionType, sec)
	}

	if len(m.Imports) > 0 {
		sec := uleb(nil, uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec = name(sec, imp.Module)
			sec = name(sec, imp.Name)
			sec = append(sec, KindFunc)
			sec = uleb(sec, imp.TypeIdx)
		}
		out = section(out, SectionImport, sec)
	}

	if len(m.Funcs) > 0 {
		sec := uleb(nil, uint32(len(m.Funcs)))
		for _, idx := range m.Funcs {
			sec = uleb(sec, idx)
		}
		out = section(out, SectionFunction, sec)
	}

	if m.MemoryPages != nil {
		sec := []byte{0x01, 0x00} // one memory, min only
		sec = uleb(sec, *m.MemoryPages)
		out = section(out, SectionMemory, sec)
	}

	if len(m.Exports) > 0 {
		sec := uleb(nil, uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec = name(sec, exp.Name)
			sec = append(sec, exp.Kind)
			sec = uleb(sec, exp.Idx)
		}
		out = section(out, SectionExport, sec)
	}

	if m.Start != nil {
		out = section(out, SectionStart, uleb(nil, *m.Start))
	}

	if len(m.Code) > 0 {
		sec := uleb(nil, uint32(len(m.Code)))
		for _, body := range m.Code {
			b := uleb(nil, uint32(len(body.Locals)))
			for _, l := range body.Locals {
				b = uleb(b, l.Count)
				b = append(b, byte(l.ValType))
			}
			b = append(b, body.Code...)
			sec = uleb(sec, uint32(len(b)))
			sec = append(sec, b...)
		}
		out = section(out, SectionCode, sec)
	}

	return out
}

func section(dst []byte, id byte, payload []byte) []byte {
	dst = append(dst, id)
	dst = uleb(dst, uint32(len(payload)))
	return append(dst, payload...)
}

func valTypes(dst []byte, types []ValType) []byte {
	dst = uleb(dst, uint32(len(types)))
	for _, t := range types {
		dst = append(dst, byte(t))
	}
	return dst
}

func name(dst []byte, s string) []byte {
	dst = uleb(dst, uint32(len(s)))
	return append(dst, s...)
}

// uleb appends v as unsigned LEB128.
func uleb(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}
