package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/wippyai/wasm-bootstrap/errors"
)

// FailurePolicy decides what Run returns after a failure has been reported.
// A nil return absorbs the failure.
type FailurePolicy interface {
	OnFailure(ctx context.Context, err error) error
}

// PolicyFunc adapts a function to the FailurePolicy interface.
type PolicyFunc func(ctx context.Context, err error) error

// OnFailure calls f(ctx, err).
func (f PolicyFunc) OnFailure(ctx context.Context, err error) error {
	return f(ctx, err)
}

var (
	// Continue absorbs every failure. The host keeps running without the module.
	Continue FailurePolicy = PolicyFunc(func(context.Context, error) error {
		return nil
	})

	// Escalate returns every failure wrapped as an initialization failure.
	Escalate FailurePolicy = PolicyFunc(func(_ context.Context, err error) error {
		return errors.InitializationFailure(err)
	})
)

// Policy names accepted by ParsePolicy.
const (
	PolicyContinue = "continue"
	PolicyEscalate = "escalate"
)

// ParsePolicy maps a policy name to its FailurePolicy.
func ParsePolicy(name string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyContinue:
		return Continue, nil
	case PolicyEscalate:
		return Escalate, nil
	default:
		return nil, errors.InvalidConfig("policy", fmt.Errorf("unknown policy %q", name))
	}
}
