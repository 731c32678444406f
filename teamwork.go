package teamwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aretw0/teamwork/internal/logging"
	httpadapter "github.com/aretw0/teamwork/pkg/adapters/http"
	"github.com/aretw0/teamwork/pkg/adapters/memory"
	redisadapter "github.com/aretw0/teamwork/pkg/adapters/redis"
	"github.com/aretw0/teamwork/pkg/config"
	"github.com/aretw0/teamwork/pkg/container"
	"github.com/aretw0/teamwork/pkg/contract"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/executor"
	"github.com/aretw0/teamwork/pkg/observability"
	"github.com/aretw0/teamwork/pkg/ports"
	"github.com/aretw0/teamwork/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime is the high-level entry point of the library. It owns one registry,
// validator, container and executor wired with the same settings.
type Runtime struct {
	registry  *registry.Registry
	validator *contract.Validator
	container *container.Container
	executor  *executor.Executor
	metrics   *prometheus.Registry
	logger    *slog.Logger
	closers   []io.Closer
}

type settings struct {
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	eventLog  bool
	lifecycle domain.Lifecycle
	policy    domain.ViolationPolicy
	mutation  domain.MutationStrategy
	branching domain.BranchingStrategy
	cache     ports.ResultCache
	registry  *registry.Registry
	rolesFile string
	metrics   *prometheus.Registry
	closers   []io.Closer
}

// Option defines a functional option for configuring the Runtime.
type Option func(*settings)

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls accumulate.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithEventLog writes one log record per registration, resolution and execution.
func WithEventLog() Option {
	return func(s *settings) {
		s.eventLog = true
	}
}

// WithLifecycle sets the default lifecycle of registered components.
func WithLifecycle(l domain.Lifecycle) Option {
	return func(s *settings) {
		s.lifecycle = l
	}
}

// WithOnViolation selects whether registration rejects or tolerates violations.
func WithOnViolation(p domain.ViolationPolicy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithMutationStrategy selects how the mutation rule is checked.
func WithMutationStrategy(m domain.MutationStrategy) Option {
	return func(s *settings) {
		s.mutation = m
	}
}

// WithBranchingStrategy selects how the branching rule is checked.
func WithBranchingStrategy(b domain.BranchingStrategy) Option {
	return func(s *settings) {
		s.branching = b
	}
}

// WithResultCache shares validation results through c.
func WithResultCache(c ports.ResultCache) Option {
	return func(s *settings) {
		s.cache = c
	}
}

// WithRegistry uses reg instead of a fresh registry with the built-in roles.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *settings) {
		s.registry = reg
	}
}

// WithRolesFile loads custom role definitions from a YAML file.
func WithRolesFile(path string) Option {
	return func(s *settings) {
		s.rolesFile = path
	}
}

// WithMetrics records Prometheus metrics into reg and serves them from Handler.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *settings) {
		s.metrics = reg
	}
}

// New initializes a Runtime. Without options it uses the built-in roles,
// singleton components, type-based mutation checks, structural branching
// checks and rejects non-conforming registrations.
func New(opts ...Option) (*Runtime, error) {
	s := &settings{
		lifecycle: domain.Singleton,
		policy:    domain.OnViolationReject,
		mutation:  domain.MutationTypeBased,
		branching: domain.BranchingStructuralScan,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	rt := &Runtime{logger: s.logger, metrics: s.metrics, closers: s.closers}

	rt.registry = s.registry
	if rt.registry == nil {
		rt.registry = registry.New()
	}
	if s.rolesFile != "" {
		handles, err := rt.registry.LoadFile(s.rolesFile)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("custom roles loaded", "file", s.rolesFile, "count", len(handles))
	}

	hooks := s.hooks
	if s.eventLog {
		hooks = observability.LogHooks(s.logger).Merge(hooks)
	}
	if s.metrics != nil {
		m, err := observability.NewMetrics(s.metrics)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		hooks = hooks.Merge(m.Hooks())
	}

	vopts := []contract.Option{
		contract.WithMutationStrategy(s.mutation),
		contract.WithBranchingStrategy(s.branching),
		contract.WithLogger(s.logger),
	}
	if s.cache != nil {
		vopts = append(vopts, contract.WithCache(s.cache))
	}
	rt.validator = contract.New(rt.registry, vopts...)

	rt.container = container.New(rt.validator,
		container.WithLifecycle(s.lifecycle),
		container.WithOnViolation(s.policy),
		container.WithLogger(s.logger),
		container.WithHooks(hooks),
	)
	rt.executor = executor.New(
		executor.WithLogger(s.logger),
		executor.WithHooks(hooks),
		executor.WithValidator(rt.validator),
		executor.WithOnViolation(s.policy),
	)
	return rt, nil
}

// FromConfig builds a Runtime from loaded configuration. Options passed here
// are applied after the configuration and win over it.
func FromConfig(cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Validate guarantees the enum values parse.
	lifecycle, _ := domain.ParseLifecycle(cfg.Runtime.Lifecycle)
	mutation, _ := domain.ParseMutationStrategy(cfg.Runtime.MutationCheck)
	branching, _ := domain.ParseBranchingStrategy(cfg.Runtime.BranchingCheck)
	policy, _ := domain.ParseViolationPolicy(cfg.Runtime.OnViolation)

	level := logging.ParseLevel(cfg.Log.Level)
	base := []Option{
		WithLogger(logging.NewWithFormat(os.Stderr, level, cfg.Log.Format)),
		WithLifecycle(lifecycle),
		WithMutationStrategy(mutation),
		WithBranchingStrategy(branching),
		WithOnViolation(policy),
		WithRolesFile(cfg.RolesFile),
	}
	if level <= slog.LevelDebug {
		base = append(base, WithEventLog())
	}

	var opened io.Closer
	switch cfg.Cache.Backend {
	case "memory":
		base = append(base, WithResultCache(memory.NewCache()))
	case "redis":
		c := redisadapter.New(cfg.Cache.RedisAddr, "", 0, redisadapter.WithTTL(cfg.Cache.TTL))
		opened = c
		base = append(base, WithResultCache(c), withCloser(c))
	}

	rt, err := New(append(base, opts...)...)
	if err != nil {
		if opened != nil {
			_ = opened.Close()
		}
		return nil, err
	}
	return rt, nil
}

func withCloser(c io.Closer) Option {
	return func(s *settings) {
		s.closers = append(s.closers, c)
	}
}

// Registry returns the role registry.
func (rt *Runtime) Registry() *registry.Registry { return rt.registry }

// Validator returns the structural validator.
func (rt *Runtime) Validator() *contract.Validator { return rt.validator }

// Container returns the dependency container.
func (rt *Runtime) Container() *container.Container { return rt.container }

// Executor returns the pipeline executor.
func (rt *Runtime) Executor() *executor.Executor { return rt.executor }

// DefineRole adds a custom role to the registry.
func (rt *Runtime) DefineRole(def domain.RoleDefinition) (registry.Handle, error) {
	return rt.registry.DefineRole(def)
}

// Validate checks a component against a role without registering it.
func (rt *Runtime) Validate(ctx context.Context, component any, kind domain.Kind, opts ...contract.CheckOption) (domain.ValidationResult, error) {
	return rt.validator.Validate(ctx, component, kind, opts...)
}

// Register binds a component under kind and name after validating it.
func (rt *Runtime) Register(ctx context.Context, kind domain.Kind, name string, p container.Provider, opts ...container.RegisterOption) error {
	return rt.container.Register(ctx, kind, name, p, opts...)
}

// Handler returns a read-only HTTP view of the runtime: roles, components,
// the dependency graph and, when configured, metrics.
func (rt *Runtime) Handler() http.Handler {
	opts := []httpadapter.Option{httpadapter.WithLogger(rt.logger)}
	if rt.metrics != nil {
		opts = append(opts, httpadapter.WithGatherer(rt.metrics))
	}
	return httpadapter.NewHandler(rt.registry, rt.container, opts...)
}

// Close releases constructed singletons and any backend the runtime opened.
func (rt *Runtime) Close() error {
	errs := []error{rt.container.Close()}
	for _, c := range rt.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Resolve returns the component bound under kind and name as T.
func Resolve[T any](ctx context.Context, rt *Runtime, kind domain.Kind, name string) (T, error) {
	return container.Resolve[T](ctx, rt.container, kind, name)
}

// Execute resolves the delegator bound under name and runs it on initial.
func Execute[S any](ctx context.Context, rt *Runtime, name string, initial S) (S, error) {
	return executor.Execute(ctx, rt.executor, rt.container, name, initial)
}

// Run executes d on initial.
func Run[S any](ctx context.Context, rt *Runtime, d domain.Delegator[S], initial S) (S, error) {
	return executor.Run(ctx, rt.executor, d, initial)
}
