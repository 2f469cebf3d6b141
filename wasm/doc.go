// Package wasm checks the binary preamble of WebAssembly modules.
//
// The bootstrap runs ReadHeader before handing bytes to an engine so that
// truncated files, foreign formats and component binaries fail with a
// precise compile-phase error instead of an engine-specific message.
//
//	h, err := wasm.ReadHeader(data)
//	if err != nil {
//	    return err // [compile] invalid_data: bad magic number
//	}
//	if h.Kind() == wasm.KindComponent {
//	    // core engines cannot instantiate components
//	}
//
// Package wasmtest encodes small core modules for tests.
package wasm
