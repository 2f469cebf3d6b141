// Package errors provides structured error types for the bootstrap.
//
// Errors are categorized by Phase (which stage of module startup failed) and
// Kind (error category). The Error type carries the module name, a detail
// message and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindInvalidData).
//		Module("app.wasm").
//		Detail("bad magic number").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Timeout("app.wasm", 30*time.Second)
//	err := errors.Compile("app.wasm", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
