// Package bootstrap runs the single initialization attempt of a binary
// module and keeps its failure from taking down the host process.
//
// # Quick Start
//
//	ctx := context.Background()
//	initializer := module.NewWazero(module.File("pkg/app.wasm"), nil)
//
//	r := bootstrap.New(initializer,
//	    bootstrap.WithSink(bootstrap.NewZapSink(logger)),
//	    bootstrap.WithTimeout(30*time.Second),
//	)
//	res := r.Bootstrap(ctx)
//	if !res.OK() {
//	    // already reported to the sink; the host continues without the module
//	}
//
// # Outcomes
//
// A Runner settles exactly once. On success the handle is returned and the
// sink is not touched. On failure the error produced by the module is written
// to the sink once, unmodified, and returned in Result.Err. Panics raised
// inside Initialize are recovered and reported the same way.
//
// Without a timeout, and with a context that never ends, a module whose
// initialization never settles leaves Bootstrap suspended forever and nothing
// is reported. WithTimeout bounds the wait; expiry is reported as a timeout
// error through the same sink.
//
// # Failure Policy
//
// Run applies a FailurePolicy after reporting. Continue (the default) absorbs
// the failure so Run returns nil. Escalate returns it wrapped as an
// initialization failure so the host can stop.
//
// # Re-entry
//
// A Runner records that it has been attempted. Later calls to Bootstrap or
// Run do not invoke the module again and return ErrAlreadyAttempted without
// writing to the sink.
package bootstrap
