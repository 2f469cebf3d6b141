// Command bootstrap loads and initializes the application's binary module.
//
// It reads bootstrap.toml from the working directory when present and
// otherwise uses defaults. It takes no flags and reads no environment
// variables. A failed initialization is reported once on standard error;
// with the default policy the process still exits cleanly.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-bootstrap/bootstrap"
	"github.com/wippyai/wasm-bootstrap/config"
	"github.com/wippyai/wasm-bootstrap/module"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	code := run(context.Background(), logger)
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, logger *zap.Logger) int {
	module.SetLogger(logger)
	sink := bootstrap.NewZapSink(logger)

	cfg, err := config.LoadOptional(config.FileName)
	if err != nil {
		sink.Report(err)
		return 1
	}
	policy, err := cfg.FailurePolicy()
	if err != nil {
		sink.Report(err)
		return 1
	}

	initializer := module.NewWazero(module.File(cfg.Module), &module.WazeroConfig{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		MemoryLimitPages: cfg.MemoryLimitPages,
		EnableWASI:       cfg.WASI,
	})

	runner := bootstrap.New(initializer,
		bootstrap.WithSink(sink),
		bootstrap.WithPolicy(policy),
		bootstrap.WithTimeout(cfg.Timeout),
		bootstrap.WithLogger(logger),
	)

	// Bootstrap keeps the handle for keep-alive; Resolve applies the same
	// policy Run would.
	res := runner.Bootstrap(ctx)
	if err := runner.Resolve(ctx, res); err != nil {
		return 1
	}
	if !res.OK() {
		return 0
	}
	defer func() { _ = res.Handle.Close(context.Background()) }()

	if cfg.KeepAlive {
		hold(ctx)
	}
	return 0
}

// hold blocks until the process receives SIGINT or SIGTERM.
func hold(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}
