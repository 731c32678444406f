package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/aretw0/teamwork/internal/logging"
	"github.com/aretw0/teamwork/pkg/contract"
	"github.com/aretw0/teamwork/pkg/domain"
	"golang.org/x/sync/singleflight"
)

// Binding describes a registered component.
type Binding struct {
	Ref          domain.Ref
	Type         reflect.Type
	Lifecycle    domain.Lifecycle
	Dependencies []domain.Ref
	// Violations are the contract violations tolerated under the warn policy.
	Violations []domain.Violation
}

type binding struct {
	ref        domain.Ref
	provider   Provider
	lifecycle  domain.Lifecycle
	deps       []domain.Ref
	violations []domain.Violation
}

// Container holds bindings and the singletons built from them.
type Container struct {
	validator *contract.Validator
	lifecycle domain.Lifecycle
	policy    domain.ViolationPolicy
	logger    *slog.Logger
	hooks     domain.LifecycleHooks

	mu       sync.RWMutex
	bindings map[domain.Ref]*binding
	order    []domain.Ref

	group      singleflight.Group
	smu        sync.Mutex
	singletons map[domain.Ref]any
}

// Option configures a Container.
type Option func(*Container)

// WithLifecycle sets the lifecycle of bindings that do not choose one.
func WithLifecycle(l domain.Lifecycle) Option {
	return func(c *Container) {
		c.lifecycle = l
	}
}

// WithOnViolation sets what Register does with a component that breaks its contract.
func WithOnViolation(p domain.ViolationPolicy) Option {
	return func(c *Container) {
		c.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Repeated calls are merged.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(c *Container) {
		c.hooks = c.hooks.Merge(h)
	}
}

// New creates a container validating registrations with v.
// A nil validator validates against the built-in roles.
func New(v *contract.Validator, opts ...Option) *Container {
	if v == nil {
		v = contract.New(nil)
	}
	c := &Container{
		validator:  v,
		lifecycle:  domain.Singleton,
		policy:     domain.OnViolationReject,
		logger:     logging.NewNop(),
		bindings:   make(map[domain.Ref]*binding),
		singletons: make(map[domain.Ref]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}

// RegisterOption adjusts a single registration.
type RegisterOption func(*registration)

type registration struct {
	lifecycle domain.Lifecycle
	checks    []contract.CheckOption
}

// As overrides the container's default lifecycle for one binding.
func As(l domain.Lifecycle) RegisterOption {
	return func(r *registration) {
		r.lifecycle = l
	}
}

// Boundary declares the component's external-boundary methods.
func Boundary(methods ...string) RegisterOption {
	return func(r *registration) {
		r.checks = append(r.checks, contract.WithBoundary(methods...))
	}
}

// Register validates the provider's type against kind and binds it to kind:name.
func (c *Container) Register(ctx context.Context, kind domain.Kind, name string, p Provider, opts ...RegisterOption) error {
	ref := domain.Ref{Kind: kind, Name: name}
	if p == nil || p.Type() == nil {
		return fmt.Errorf("register %s: nil provider", ref)
	}
	if name == "" {
		return fmt.Errorf("register %s: empty name", ref)
	}
	if c.bound(ref) {
		return &domain.DuplicateRegistrationError{Ref: ref}
	}

	reg := registration{lifecycle: c.lifecycle}
	for _, opt := range opts {
		opt(&reg)
	}
	if _, fixed := p.(instanceProvider); fixed {
		reg.lifecycle = domain.Singleton
	}

	deps := p.Dependencies()
	checks := append(reg.checks, contract.WithDependencies(deps...))
	res, err := c.validator.ValidateType(ctx, p.Type(), kind, checks...)
	if err != nil {
		return fmt.Errorf("register %s: %w", ref, err)
	}

	event := &domain.RegisterEvent{Ref: ref, Lifecycle: reg.lifecycle, Violations: res.Violations}
	if !res.OK {
		if c.policy != domain.OnViolationWarn {
			c.emitRegister(ctx, event)
			return &domain.ContractViolationError{Ref: ref, Violations: res.Violations}
		}
		for _, v := range res.Violations {
			c.logger.WarnContext(ctx, "contract violation tolerated", "ref", ref.String(), "violation", v.String())
		}
	}

	c.mu.Lock()
	if _, exists := c.bindings[ref]; exists {
		c.mu.Unlock()
		return &domain.DuplicateRegistrationError{Ref: ref}
	}
	c.bindings[ref] = &binding{
		ref:        ref,
		provider:   p,
		lifecycle:  reg.lifecycle,
		deps:       deps,
		violations: res.Violations,
	}
	c.order = append(c.order, ref)
	c.mu.Unlock()

	event.Accepted = true
	c.emitRegister(ctx, event)
	c.logger.DebugContext(ctx, "component registered", "ref", ref.String(), "lifecycle", reg.lifecycle, "deps", len(deps))
	return nil
}

func (c *Container) bound(ref domain.Ref) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[ref]
	return ok
}

func (c *Container) emitRegister(ctx context.Context, e *domain.RegisterEvent) {
	if c.hooks.OnRegister != nil {
		c.hooks.OnRegister(ctx, e)
	}
}

// Resolve returns the component bound to kind:name, constructing it and its
// dependencies as needed.
func (c *Container) Resolve(ctx context.Context, kind domain.Kind, name string) (any, error) {
	ref := domain.Ref{Kind: kind, Name: name}
	r := &resolution{c: c, built: make(map[domain.Ref]any)}

	v, err := c.resolve(ctx, r, ref)
	if c.hooks.OnResolve != nil {
		c.hooks.OnResolve(ctx, &domain.ResolveEvent{Ref: ref, Constructed: r.constructed, Err: err})
	}
	if err != nil {
		c.logger.DebugContext(ctx, "resolution failed", "ref", ref.String(), "err", err)
		return nil, err
	}
	return v, nil
}

func (c *Container) resolve(ctx context.Context, r *resolution, ref domain.Ref) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	err := c.checkClosure(ref)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return r.get(ctx, ref)
}

// Resolve returns the component bound to kind:name as a T.
func Resolve[T any](ctx context.Context, c *Container, kind domain.Kind, name string) (T, error) {
	var zero T
	v, err := c.Resolve(ctx, kind, name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s:%s is %T, not %s", kind, name, v, reflect.TypeFor[T]())
	}
	return t, nil
}

// resolution memoises the instances built during one Resolve call.
type resolution struct {
	c           *Container
	built       map[domain.Ref]any
	constructed int
}

func (r *resolution) get(ctx context.Context, ref domain.Ref) (any, error) {
	if v, ok := r.built[ref]; ok {
		return v, nil
	}

	r.c.mu.RLock()
	b := r.c.bindings[ref]
	r.c.mu.RUnlock()

	var (
		v   any
		err error
	)
	if b.lifecycle == domain.Singleton {
		v, err = r.singleton(ctx, b)
	} else {
		v, err = r.construct(ctx, b)
	}
	if err != nil {
		return nil, err
	}
	r.built[ref] = v
	return v, nil
}

func (r *resolution) singleton(ctx context.Context, b *binding) (any, error) {
	if v, ok := r.c.cached(b.ref); ok {
		return v, nil
	}
	v, err, _ := r.c.group.Do(b.ref.String(), func() (any, error) {
		if v, ok := r.c.cached(b.ref); ok {
			return v, nil
		}
		v, err := r.construct(ctx, b)
		if err != nil {
			return nil, err
		}
		r.c.smu.Lock()
		r.c.singletons[b.ref] = v
		r.c.smu.Unlock()
		return v, nil
	})
	return v, err
}

func (r *resolution) construct(ctx context.Context, b *binding) (any, error) {
	values := make(map[domain.Ref]any, len(b.deps))
	for _, dep := range b.deps {
		v, err := r.get(ctx, dep)
		if err != nil {
			return nil, err
		}
		values[dep] = v
	}

	v, err := b.provider.Provide(ctx, Deps{owner: b.ref, values: values})
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", b.ref, err)
	}
	r.constructed++
	r.c.logger.DebugContext(ctx, "component constructed", "ref", b.ref.String(), "lifecycle", b.lifecycle)
	return v, nil
}

func (c *Container) cached(ref domain.Ref) (any, bool) {
	c.smu.Lock()
	defer c.smu.Unlock()
	v, ok := c.singletons[ref]
	return v, ok
}

// Inspect returns the bindings in registration order.
func (c *Container) Inspect() []Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Binding, 0, len(c.order))
	for _, ref := range c.order {
		b := c.bindings[ref]
		out = append(out, Binding{
			Ref:          b.ref,
			Type:         b.provider.Type(),
			Lifecycle:    b.lifecycle,
			Dependencies: append([]domain.Ref(nil), b.deps...),
			Violations:   append([]domain.Violation(nil), b.violations...),
		})
	}
	return out
}

// Validator returns the validator guarding registrations.
func (c *Container) Validator() *contract.Validator {
	return c.validator
}

// Close drops every singleton, closing those that implement io.Closer.
// Bindings stay registered; the next resolution builds fresh instances.
func (c *Container) Close() error {
	c.smu.Lock()
	singletons := c.singletons
	c.singletons = make(map[domain.Ref]any)
	c.smu.Unlock()

	c.mu.RLock()
	order := append([]domain.Ref(nil), c.order...)
	c.mu.RUnlock()

	// Reverse registration order so dependents close before their dependencies.
	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		v, ok := singletons[order[i]]
		if !ok {
			continue
		}
		if closer, ok := v.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", order[i], err))
			}
		}
	}
	return errors.Join(errs...)
}
