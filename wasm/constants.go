package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported core WebAssembly binary format version.
	Version uint32 = 0x01
)

// Layer values distinguish core modules from Component Model binaries.
// Core modules encode version 1 as a u32, so their layer half is zero.
const (
	LayerCore      uint16 = 0x00
	LayerComponent uint16 = 0x01
)

// MaxMemoryPages is the largest page count a 32-bit memory can address
// (65536 pages of 64KB = 4GB).
const MaxMemoryPages uint32 = 65536
