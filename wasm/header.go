package wasm

import (
	"encoding/binary"

	"github.com/wippyai/wasm-bootstrap/errors"
)

// HeaderSize is the length of the preamble every wasm binary starts with.
const HeaderSize = 8

// BinaryKind distinguishes core modules from component binaries.
type BinaryKind uint8

const (
	KindCore BinaryKind = iota
	KindComponent
)

func (k BinaryKind) String() string {
	switch k {
	case KindCore:
		return "core"
	case KindComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Header is the decoded binary preamble.
type Header struct {
	Version uint16
	Layer   uint16
}

// Kind reports whether the binary is a core module or a component.
func (h Header) Kind() BinaryKind {
	if h.Layer == LayerComponent {
		return KindComponent
	}
	return KindCore
}

// ReadHeader validates the magic number and version of a wasm binary.
// It does not look past the preamble.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < 4 {
		return Header{}, errors.InvalidHeader("truncated header: %d bytes", len(data))
	}
	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return Header{}, errors.InvalidHeader("bad magic number")
	}
	if len(data) < HeaderSize {
		return Header{}, errors.InvalidHeader("truncated header: %d bytes", len(data))
	}

	h := Header{
		Version: binary.LittleEndian.Uint16(data[4:6]),
		Layer:   binary.LittleEndian.Uint16(data[6:8]),
	}

	switch h.Layer {
	case LayerCore:
		if uint32(h.Version) != Version {
			return Header{}, errors.New(errors.PhaseCompile, errors.KindInvalidData).
				Detail("unsupported version %d", h.Version).
				Value(h.Version).
				Build()
		}
	case LayerComponent:
	default:
		return Header{}, errors.New(errors.PhaseCompile, errors.KindInvalidData).
			Detail("unknown layer %d", h.Layer).
			Value(h.Layer).
			Build()
	}

	return h, nil
}
