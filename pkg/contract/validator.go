package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/aretw0/teamwork/internal/logging"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/ports"
	"github.com/aretw0/teamwork/pkg/registry"
)

// Validator checks candidate components against the role contracts of a registry.
// It is safe for concurrent use.
type Validator struct {
	registry  *registry.Registry
	mutation  domain.MutationStrategy
	branching domain.BranchingStrategy
	cache     ports.ResultCache
	logger    *slog.Logger
	sources   *sourceIndex
}

// Option configures a Validator.
type Option func(*Validator)

// WithMutationStrategy selects how the mutation rule is checked (default type-based).
func WithMutationStrategy(s domain.MutationStrategy) Option {
	return func(v *Validator) {
		v.mutation = s
	}
}

// WithBranchingStrategy selects how the branching rule is checked (default structural-scan).
func WithBranchingStrategy(s domain.BranchingStrategy) Option {
	return func(v *Validator) {
		v.branching = s
	}
}

// WithCache shares validation results through a ResultCache.
func WithCache(c ports.ResultCache) Option {
	return func(v *Validator) {
		v.cache = c
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a validator over reg. A nil registry means the built-in roles.
func New(reg *registry.Registry, opts ...Option) *Validator {
	if reg == nil {
		reg = registry.New()
	}
	v := &Validator{
		registry:  reg,
		mutation:  domain.MutationTypeBased,
		branching: domain.BranchingStructuralScan,
		logger:    logging.NewNop(),
		sources:   newSourceIndex(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = logging.NewNop()
	}
	return v
}

// Registry returns the registry the validator reads contracts from.
func (v *Validator) Registry() *registry.Registry {
	return v.registry
}

// CheckOption adjusts a single validation.
type CheckOption func(*checkConfig)

type checkConfig struct {
	name     string
	boundary []string
	deps     []domain.Ref
}

// WithName sets the component name used in violation records (default: the type name).
func WithName(name string) CheckOption {
	return func(c *checkConfig) {
		c.name = name
	}
}

// WithBoundary declares methods that talk to an external system. They are
// exempt from the parameter and result shape rules.
func WithBoundary(methods ...string) CheckOption {
	return func(c *checkConfig) {
		c.boundary = append(c.boundary, methods...)
	}
}

// WithDependencies declares dependencies in addition to the struct tags.
func WithDependencies(refs ...domain.Ref) CheckOption {
	return func(c *checkConfig) {
		c.deps = append(c.deps, refs...)
	}
}

// Validate checks the dynamic type of component against kind.
// The error is non-nil only when validation could not run (unknown kind,
// nil or non-concrete component, malformed tags); rule failures are reported
// in the result.
func (v *Validator) Validate(ctx context.Context, component any, kind domain.Kind, opts ...CheckOption) (domain.ValidationResult, error) {
	if component == nil {
		return domain.ValidationResult{}, errors.New("cannot validate nil component")
	}
	return v.ValidateType(ctx, reflect.TypeOf(component), kind, opts...)
}

// ValidateType checks t against kind.
func (v *Validator) ValidateType(ctx context.Context, t reflect.Type, kind domain.Kind, opts ...CheckOption) (domain.ValidationResult, error) {
	h, err := v.registry.Handle(kind)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if t == nil || t.Kind() == reflect.Interface || (t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface) {
		return domain.ValidationResult{}, fmt.Errorf("cannot validate %v: component type must be concrete", t)
	}

	cfg := checkConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	fields, err := TaggedFields(t)
	if err != nil {
		return domain.ValidationResult{}, err
	}

	c := newCheck(v, h, t, cfg, fields)

	var key string
	if v.cache != nil {
		key = c.cacheKey()
		res, ok, err := v.cache.Get(ctx, key)
		if err != nil {
			v.logger.WarnContext(ctx, "validation cache lookup failed", "component", c.name, "err", err)
		} else if ok {
			v.logger.DebugContext(ctx, "validation cache hit", "component", c.name, "kind", kind)
			return res, nil
		}
	}

	res := c.run()
	v.logger.DebugContext(ctx, "component validated",
		"component", c.name,
		"kind", kind,
		"ok", res.OK,
		"violations", len(res.Violations))

	if v.cache != nil {
		if err := v.cache.Put(ctx, key, res); err != nil {
			v.logger.WarnContext(ctx, "validation cache store failed", "component", c.name, "err", err)
		}
	}
	return res, nil
}

func (c *check) cacheKey() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%+v|", c.def)
	sb.WriteString(c.base.PkgPath() + "." + c.base.String())
	sb.WriteByte('|')
	sb.WriteString(string(c.v.mutation) + "," + string(c.v.branching))

	deps := make([]string, 0, len(c.deps))
	for _, d := range c.deps {
		deps = append(deps, d.String())
	}
	sort.Strings(deps)
	sb.WriteString("|" + strings.Join(deps, ","))

	boundary := make([]string, 0, len(c.boundary))
	for name := range c.boundary {
		boundary = append(boundary, name)
	}
	sort.Strings(boundary)
	sb.WriteString("|" + strings.Join(boundary, ","))

	for _, m := range c.methods {
		sb.WriteString("|" + m.Name + ":" + strconv.FormatBool(m.PointerRecv) + ":" + m.signature)
	}
	if c.scans() {
		for _, m := range c.methods {
			if src := c.source(m); src.status == sourceFound {
				sb.WriteString("|" + strconv.FormatUint(src.digest, 16))
			}
		}
	}
	return "teamwork:validation:" + c.name + ":" + strconv.FormatUint(xxhash.Sum64String(sb.String()), 16)
}
