package bootstrap

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-bootstrap/errors"
	"github.com/wippyai/wasm-bootstrap/module"
)

// ErrAlreadyAttempted matches, through errors.Is, the error every Bootstrap
// call after the first returns.
var ErrAlreadyAttempted = errors.ErrAlreadyAttempted

// State is the lifecycle of a Runner.
type State int32

const (
	StateIdle    State = iota // not attempted yet
	StatePending              // waiting for Initialize to settle
	StateDone                 // settled; terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Result is the outcome of a bootstrap attempt.
// Exactly one of Handle and Err is set.
type Result struct {
	Handle module.Handle
	Err    error
}

// OK reports whether initialization succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Runner performs one initialization attempt of a binary module.
// It is safe for concurrent use; only the first call does any work.
type Runner struct {
	initializer module.Initializer
	sink        Sink
	policy      FailurePolicy
	logger      *zap.Logger
	name        string
	timeout     time.Duration
	state       atomic.Int32
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink sets the diagnostic sink. Defaults to Stderr.
func WithSink(s Sink) Option {
	return func(r *Runner) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithPolicy sets the failure policy applied by Run. Defaults to Continue.
func WithPolicy(p FailurePolicy) Option {
	return func(r *Runner) {
		if p != nil {
			r.policy = p
		}
	}
}

// WithTimeout bounds how long Bootstrap waits for Initialize.
// Zero or negative waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger for lifecycle events. They are logged at debug
// level only. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Runner for initializer.
func New(initializer module.Initializer, opts ...Option) *Runner {
	r := &Runner{
		initializer: initializer,
		sink:        Stderr,
		policy:      Continue,
		logger:      zap.NewNop(),
		name:        module.NameOf(initializer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Bootstrap invokes Initialize once and returns its outcome. A failure is
// written to the sink exactly once before Bootstrap returns.
func (r *Runner) Bootstrap(ctx context.Context) Result {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StatePending)) {
		return Result{Err: errors.AlreadyAttempted(r.name)}
	}

	r.logger.Debug("bootstrap started",
		zap.String("module", r.name),
		zap.Duration("timeout", r.timeout),
	)
	start := time.Now()

	h, err := r.attempt(ctx)
	r.state.Store(int32(StateDone))

	if err != nil {
		r.sink.Report(err)
		r.logger.Debug("bootstrap failed",
			zap.String("module", r.name),
			zap.Duration("elapsed", time.Since(start)),
		)
		return Result{Err: err}
	}

	r.logger.Debug("bootstrap done",
		zap.String("module", r.name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return Result{Handle: h}
}

// Run bootstraps the module and applies the failure policy. The handle is
// not retained. With the Continue policy Run returns nil for every
// initialization outcome; only a repeated call returns ErrAlreadyAttempted.
func (r *Runner) Run(ctx context.Context) error {
	return r.Resolve(ctx, r.Bootstrap(ctx))
}

// Resolve applies the failure policy to a Bootstrap result. Callers that
// need the handle call Bootstrap themselves and then Resolve, which gives
// the same outcome as Run. A repeated-call error is returned unchanged.
func (r *Runner) Resolve(ctx context.Context, res Result) error {
	if res.Err == nil {
		return nil
	}
	if stderrors.Is(res.Err, ErrAlreadyAttempted) {
		return res.Err
	}
	return r.policy.OnFailure(ctx, res.Err)
}

// Run creates a Runner for initializer and runs it.
func Run(ctx context.Context, initializer module.Initializer, opts ...Option) error {
	return New(initializer, opts...).Run(ctx)
}

type outcome struct {
	handle module.Handle
	err    error
}

func (r *Runner) attempt(ctx context.Context) (module.Handle, error) {
	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// A context that can never end needs no watcher; block on the call.
	if ctx.Done() == nil {
		o := r.call(ctx)
		return o.handle, o.err
	}

	done := make(chan outcome, 1)
	go func() {
		done <- r.call(ctx)
	}()

	select {
	case o := <-done:
		if o.err != nil && ctx.Err() != nil {
			return nil, r.expired(parent, o.err)
		}
		return o.handle, o.err
	case <-ctx.Done():
		select {
		case o := <-done:
			if o.err == nil {
				return o.handle, nil
			}
			return nil, r.expired(parent, o.err)
		default:
			go r.release(done)
			return nil, r.expired(parent, ctx.Err())
		}
	}
}

// call invokes Initialize, turning a panic into a failure.
func (r *Runner) call(ctx context.Context) (o outcome) {
	defer func() {
		if v := recover(); v != nil {
			o = outcome{err: errors.Panicked(r.name, v)}
		}
	}()

	h, err := r.initializer.Initialize(ctx)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{handle: h}
}

// expired classifies a failure seen after the context ended.
func (r *Runner) expired(parent context.Context, cause error) error {
	if parent.Err() != nil {
		return errors.Canceled(r.name, cause)
	}
	e := errors.Timeout(r.name, r.timeout)
	e.Cause = cause
	return e
}

// release closes a handle produced after the Runner stopped waiting.
func (r *Runner) release(done <-chan outcome) {
	o := <-done
	if o.handle == nil {
		return
	}
	if err := o.handle.Close(context.Background()); err != nil {
		r.logger.Debug("close abandoned module", zap.String("module", r.name), zap.Error(err))
	}
}
