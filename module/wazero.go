package module

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"io"
	"sort"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bootstrap/errors"
	"github.com/wippyai/wasm-bootstrap/wasm"
)

// WazeroConfig holds configuration for the wazero engine
type WazeroConfig struct {
	// Stdout and Stderr receive the guest's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// Env is exposed to the guest through WASI environ_get.
	Env map[string]string

	// Name overrides the module name taken from the Source.
	Name string

	// Args are the guest's argv. Defaults to the module name.
	Args []string

	// StartFunctions run during instantiation. Nil means wazero's default
	// ("_start"); an empty slice runs nothing.
	StartFunctions []string

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB). Values above wasm.MaxMemoryPages
	// fail Initialize with an invalid_input error.
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// EnableWASI instantiates wasi_snapshot_preview1 before the module.
	EnableWASI bool
}

// Wazero initializes a module on the wazero runtime.
type Wazero struct {
	src Source
	cfg WazeroConfig
}

// NewWazero creates a wazero-backed Initializer. A nil cfg uses defaults.
func NewWazero(src Source, cfg *WazeroConfig) *Wazero {
	w := &Wazero{src: src}
	if cfg != nil {
		w.cfg = *cfg
	}
	return w
}

// Name returns the module name used in diagnostics.
func (w *Wazero) Name() string {
	if w.cfg.Name != "" {
		return w.cfg.Name
	}
	return w.src.Name()
}

// Initialize locates, compiles and instantiates the module.
// On failure every engine resource created along the way is released.
func (w *Wazero) Initialize(ctx context.Context) (Handle, error) {
	name := w.Name()
	start := time.Now()

	data, err := w.src.Locate(ctx)
	if err != nil {
		return nil, err
	}

	h, err := wasm.ReadHeader(data)
	if err != nil {
		return nil, withModule(err, name)
	}
	if h.Kind() == wasm.KindComponent {
		return nil, withModule(errors.Unsupported(errors.PhaseCompile,
			"component binaries are not supported by the core engine"), name)
	}

	if w.cfg.MemoryLimitPages > wasm.MaxMemoryPages {
		return nil, withModule(errors.New(errors.PhaseInstantiate, errors.KindInvalidInput).
			Detail("memory limit %d pages exceeds %d", w.cfg.MemoryLimitPages, wasm.MaxMemoryPages).
			Value(w.cfg.MemoryLimitPages).
			Build(), name)
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if w.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(w.cfg.MemoryLimitPages)
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := runtime.CompileModule(ctx, data)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Compile(name, err)
	}

	if w.cfg.EnableWASI {
		if _, err := instantiateWASI(ctx, runtime); err != nil {
			_ = runtime.Close(ctx)
			return nil, errors.Instantiation(name, err)
		}
	}

	instance, err := runtime.InstantiateModule(ctx, compiled, w.moduleConfig(name))
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Instantiation(name, err)
	}

	Logger().Debug("module initialized",
		zap.String("module", name),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &WazeroHandle{
		name:     name,
		runtime:  runtime,
		instance: instance,
	}, nil
}

func (w *Wazero) moduleConfig(name string) wazero.ModuleConfig {
	// Anonymous so the module does not collide with host module names.
	modConfig := wazero.NewModuleConfig().WithName("")

	if w.cfg.Stdout != nil {
		modConfig = modConfig.WithStdout(w.cfg.Stdout)
	}
	if w.cfg.Stderr != nil {
		modConfig = modConfig.WithStderr(w.cfg.Stderr)
	}

	args := w.cfg.Args
	if len(args) == 0 {
		args = []string{name}
	}
	modConfig = modConfig.WithArgs(args...)

	keys := make([]string, 0, len(w.cfg.Env))
	for k := range w.cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		modConfig = modConfig.WithEnv(k, w.cfg.Env[k])
	}

	if w.cfg.StartFunctions != nil {
		modConfig = modConfig.WithStartFunctions(w.cfg.StartFunctions...)
	}

	if w.cfg.EnableWASI {
		modConfig = modConfig.
			WithSysWalltime().
			WithSysNanotime().
			WithRandSource(rand.Reader)
	}

	return modConfig
}

// WazeroHandle is a module instantiated on its own wazero runtime.
type WazeroHandle struct {
	runtime  wazero.Runtime
	instance api.Module
	name     string
}

// Name returns the module name.
func (h *WazeroHandle) Name() string {
	return h.name
}

// Module returns the instantiated wazero module.
// A start function that exited with code 0 leaves it closed.
func (h *WazeroHandle) Module() api.Module {
	return h.instance
}

// Runtime returns the runtime owning the module.
func (h *WazeroHandle) Runtime() wazero.Runtime {
	return h.runtime
}

// Close releases the runtime, which closes the instance and compiled code.
func (h *WazeroHandle) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// ExitCode extracts the guest exit code from an initialization error.
func ExitCode(err error) (uint32, bool) {
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

func withModule(err error, name string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Module == "" {
		e.Module = name
	}
	return err
}
