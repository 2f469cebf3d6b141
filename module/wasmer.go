//go:build wasmer

package module

import (
	"context"
	stderrors "errors"
	"sort"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/sys"
	"github.com/wasmerio/wasmer-go/wasmer"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bootstrap/errors"
	"github.com/wippyai/wasm-bootstrap/wasm"
)

// WasmerConfig holds configuration for the wasmer engine
type WasmerConfig struct {
	Env            map[string]string
	Name           string
	Args           []string
	StartFunctions []string
	EnableWASI     bool
}

// Wasmer initializes a module on the wasmer runtime.
// wasmer calls cannot be interrupted, so Initialize only checks ctx between
// stages; the bootstrap timeout abandons a start function that never returns.
// proc_exit(0) from a start function is success. Other exit codes are
// reported as *sys.ExitError, so ExitCode reads them as it does for wazero.
type Wasmer struct {
	src Source
	cfg WasmerConfig
}

// NewWasmer creates a wasmer-backed Initializer. A nil cfg uses defaults.
func NewWasmer(src Source, cfg *WasmerConfig) *Wasmer {
	w := &Wasmer{src: src}
	if cfg != nil {
		w.cfg = *cfg
	}
	return w
}

// Name returns the module name used in diagnostics.
func (w *Wasmer) Name() string {
	if w.cfg.Name != "" {
		return w.cfg.Name
	}
	return w.src.Name()
}

// Initialize locates, compiles and instantiates the module.
func (w *Wasmer) Initialize(ctx context.Context) (Handle, error) {
	name := w.Name()

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

	store := wasmer.NewStore(wasmer.NewEngine())
	compiled, err := wasmer.NewModule(store, data)
	if err != nil {
		return nil, errors.Compile(name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(name, err)
	}

	imports := wasmer.NewImportObject()
	if w.cfg.EnableWASI {
		imports, err = w.wasiImports(name, store, compiled)
		if err != nil {
			return nil, errors.Instantiation(name, err)
		}
	}

	instance, err := wasmer.NewInstance(compiled, imports)
	if err != nil {
		return nil, errors.Instantiation(name, err)
	}

	starts := w.cfg.StartFunctions
	if starts == nil {
		starts = []string{"_start"}
	}
	for _, fn := range starts {
		start, err := instance.Exports.GetFunction(fn)
		if err != nil {
			continue
		}
		if _, err := start(); err != nil {
			code, exited := wasmerExitCode(err)
			switch {
			case !exited:
				return nil, errors.Instantiation(name, err)
			case code != 0:
				return nil, errors.Instantiation(name, sys.NewExitError(code))
			}
		}
	}

	Logger().Debug("module initialized", zap.String("module", name), zap.String("engine", "wasmer"))

	return &WasmerHandle{name: name, store: store, instance: instance}, nil
}

func (w *Wasmer) wasiImports(name string, store *wasmer.Store, compiled *wasmer.Module) (*wasmer.ImportObject, error) {
	builder := wasmer.NewWasiStateBuilder(name)

	args := w.cfg.Args
	if len(args) > 0 {
		args = args[1:]
	}
	for _, arg := range args {
		builder = builder.Argument(arg)
	}

	keys := make([]string, 0, len(w.cfg.Env))
	for k := range w.cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		builder = builder.Environment(k, w.cfg.Env[k])
	}

	env, err := builder.Finalize()
	if err != nil {
		return nil, err
	}
	return env.GenerateImportObject(store, compiled)
}

// wasmerExitCode reads the code of a WASI proc_exit trap. wasmer reports the
// exit as a trap whose message ends in "exited with code: N".
func wasmerExitCode(err error) (uint32, bool) {
	var trap *wasmer.TrapError
	if !stderrors.As(err, &trap) {
		return 0, false
	}
	msg := trap.Error()
	i := strings.LastIndex(msg, wasiExitMarker)
	if i < 0 {
		return 0, false
	}
	code, perr := strconv.ParseUint(strings.TrimSpace(msg[i+len(wasiExitMarker):]), 10, 32)
	if perr != nil {
		return 0, false
	}
	return uint32(code), true
}

const wasiExitMarker = "exited with code:"

// WasmerHandle is a module instantiated on its own wasmer store.
type WasmerHandle struct {
	store    *wasmer.Store
	instance *wasmer.Instance
	name     string
}

// Name returns the module name.
func (h *WasmerHandle) Name() string {
	return h.name
}

// Instance returns the wasmer instance.
func (h *WasmerHandle) Instance() *wasmer.Instance {
	return h.instance
}

// Close drops the handle's references. wasmer frees the store and instance
// through finalizers.
func (h *WasmerHandle) Close(context.Context) error {
	h.instance = nil
	h.store = nil
	return nil
}
