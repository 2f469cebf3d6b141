package module

import "context"

// Handle is an initialized module. Its use after initialization is up to
// the host; the bootstrap never inspects it.
type Handle interface {
	// Name identifies the module in diagnostics.
	Name() string
	// Close releases the engine resources behind the module.
	Close(ctx context.Context) error
}

// Initializer locates, compiles and instantiates a binary module.
// Initialize settles exactly once per call, either with a Handle or with
// an error describing the load, compile or instantiate problem.
type Initializer interface {
	Initialize(ctx context.Context) (Handle, error)
}

// InitializerFunc adapts a function to the Initializer interface.
type InitializerFunc func(ctx context.Context) (Handle, error)

// Initialize calls f(ctx).
func (f InitializerFunc) Initialize(ctx context.Context) (Handle, error) {
	return f(ctx)
}

// Named is implemented by initializers that know their module name before
// Initialize runs. The bootstrap uses it to label timeout and panic errors.
type Named interface {
	Name() string
}

// NameOf returns the module name of initializer, or "" when it has none.
func NameOf(initializer Initializer) string {
	if n, ok := initializer.(Named); ok {
		return n.Name()
	}
	return ""
}
