package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/aretw0/teamwork/internal/logging"
	"github.com/aretw0/teamwork/pkg/container"
	"github.com/aretw0/teamwork/pkg/contract"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/state"
)

// Executor validates and invokes delegators.
type Executor struct {
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	validator *contract.Validator
	policy    domain.ViolationPolicy

	mu      sync.Mutex
	checked map[reflect.Type]error
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Repeated calls are merged.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = e.hooks.Merge(h)
	}
}

// WithValidator sets the validator used to check delegator types.
func WithValidator(v *contract.Validator) Option {
	return func(e *Executor) {
		e.validator = v
	}
}

// WithOnViolation sets what happens to a delegator that breaks its contract.
// Under warn the violations are logged once per type and the delegator runs.
func WithOnViolation(p domain.ViolationPolicy) Option {
	return func(e *Executor) {
		e.policy = p
	}
}

// New creates an executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger:  logging.NewNop(),
		policy:  domain.OnViolationReject,
		checked: make(map[reflect.Type]error),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.validator == nil {
		e.validator = contract.New(nil)
	}
	return e
}

// Run executes d once with a copy of initial.
func Run[S any](ctx context.Context, e *Executor, d domain.Delegator[S], initial S) (S, error) {
	return NewInvocation(e, d).Run(ctx, initial)
}

// Execute resolves the delegator bound to name in c and runs it.
func Execute[S any](ctx context.Context, e *Executor, c *container.Container, name string, initial S) (S, error) {
	d, err := container.Resolve[domain.Delegator[S]](ctx, c, domain.KindDelegator, name)
	if err != nil {
		var zero S
		return zero, err
	}
	inv := NewInvocation(e, d)
	inv.name = name
	return inv.Run(ctx, initial)
}

// checkDelegator validates the dynamic type of d against the delegator
// contract. Each type is validated once.
func (e *Executor) checkDelegator(ctx context.Context, d any, name string) error {
	t := reflect.TypeOf(d)
	if t == nil {
		return errors.New("nil delegator")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.checked[t]; ok {
		return err
	}

	res, err := e.validator.ValidateType(ctx, t, domain.KindDelegator)
	if err == nil && !res.OK {
		ref := domain.Ref{Kind: domain.KindDelegator, Name: name}
		if e.policy == domain.OnViolationWarn {
			for _, v := range res.Violations {
				e.logger.WarnContext(ctx, "contract violation tolerated", "ref", ref.String(), "violation", v.String())
			}
		} else {
			err = &domain.ContractViolationError{Ref: ref, Violations: res.Violations}
		}
	}
	e.checked[t] = err
	return err
}

func (e *Executor) emit(ctx context.Context, hook func(context.Context, *domain.ExecuteEvent), ev *domain.ExecuteEvent) {
	if hook != nil {
		hook(ctx, ev)
	}
}

func delegatorName(d any) string {
	t := reflect.TypeOf(d)
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Suspend runs a blocking collaborator call and returns early when ctx ends.
// fn should itself honour ctx; Suspend only stops waiting for it.
func Suspend[S any](ctx context.Context, fn func(context.Context) (S, error)) (S, error) {
	var zero S
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		s   S
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := fn(ctx)
		done <- result{s, err}
	}()

	select {
	case r := <-done:
		return r.s, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func copyInitial[S any](initial S) (S, error) {
	in, err := state.Copy(initial)
	if err != nil {
		return in, fmt.Errorf("copy initial state: %w", err)
	}
	return in, nil
}
