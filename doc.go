// Package wasmbootstrap loads and initializes a single WebAssembly binary
// module at process start without letting its failure crash the host.
//
// # Architecture Overview
//
//	wasmbootstrap/
//	├── bootstrap/       Runner: one initialization attempt, sink, failure policy
//	├── module/          Initializer and Handle; wazero (and wasmer) engines
//	├── wasm/            Binary header preflight
//	│   └── wasmtest/    Encoder for small test modules
//	├── config/          Optional bootstrap.toml loading
//	├── errors/          Structured error types for diagnostics
//	└── cmd/bootstrap/   Process entry point
//
// # Quick Start
//
//	ctx := context.Background()
//	initializer := module.NewWazero(module.File("pkg/app.wasm"), &module.WazeroConfig{
//	    EnableWASI: true,
//	})
//
//	res := bootstrap.New(initializer, bootstrap.WithTimeout(30*time.Second)).Bootstrap(ctx)
//	if res.OK() {
//	    defer res.Handle.Close(ctx)
//	}
//
// # Failure Handling
//
// Every failure (missing file, bad magic number, compile error, unresolved
// import, trapping start function, panic, timeout) is written once to the
// diagnostic sink. The default Continue policy then lets the host carry on
// without the module; Escalate hands the failure back to the caller.
//
// # Thread Safety
//
// Runner is safe for concurrent use. Only the first Bootstrap call invokes
// the module; the rest return ErrAlreadyAttempted.
package wasmbootstrap
