// Package module defines the binary module the bootstrap initializes.
//
// The bootstrap only sees two things: an Initializer with a single
// Initialize call, and the opaque Handle it returns on success. Everything
// else about the module (its exports, its memory, what it does once running)
// belongs to the module and to the host that owns the handle.
//
// # Engines
//
// Wazero is the default engine. Initialize runs the full startup pipeline:
//
//	locate       read bytes from a Source (file, fs.FS, in-memory)
//	preflight    wasm.ReadHeader rejects foreign or truncated binaries
//	compile      wazero.Runtime.CompileModule
//	instantiate  link imports (optionally WASI preview1), run start functions
//
// Each stage reports failures with its own errors.Phase, so a diagnostic
// says where startup stopped:
//
//	initializer := module.NewWazero(module.File("pkg/app.wasm"), &module.WazeroConfig{
//	    EnableWASI: true,
//	})
//	h, err := initializer.Initialize(ctx)
//	if err != nil {
//	    log.Print(err) // [compile] invalid_data in app.wasm: bad magic number
//	}
//	defer h.Close(ctx)
//
// Wasmer is available with the "wasmer" build tag and needs cgo.
//
// # Cancellation
//
// The wazero runtime is created with close-on-context-done, so a start
// function stuck in a loop is interrupted when the context passed to
// Initialize expires.
package module
