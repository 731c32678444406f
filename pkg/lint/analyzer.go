package lint

import (
	"fmt"
	"sync"

	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/registry"
	"golang.org/x/tools/go/analysis"
)

const doc = `check role contracts of //team: annotated types

Types carrying a //team:<kind> directive are checked against the role
contract of <kind>: method names and count, parameter and result shapes,
mutation, branching and forbidden cross-role dependencies.`

// Analyzer checks the built-in roles with the default strategies.
var Analyzer = NewAnalyzer()

// Option configures an analyzer or a CheckDir run.
type Option func(*settings)

// WithRegistry checks against reg instead of the built-in roles.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *settings) {
		s.registry = reg
	}
}

// WithMutationStrategy selects how the mutation rule is proven.
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

func newSettings(opts []Option) settings {
	s := settings{
		mutation:  domain.MutationTypeBased,
		branching: domain.BranchingStructuralScan,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	return s
}

// NewAnalyzer returns a teamlint analyzer. The -mutation, -branching and
// -roles flags override opts.
func NewAnalyzer(opts ...Option) *analysis.Analyzer {
	base := newSettings(opts)
	var (
		mutation  = string(base.mutation)
		branching = string(base.branching)
		rolesFile string
		once      sync.Once
		resolved  settings
		setupErr  error
	)

	a := &analysis.Analyzer{
		Name: "teamlint",
		Doc:  doc,
	}
	a.Flags.StringVar(&mutation, "mutation", mutation, "mutation check strategy: type-based|structural-scan")
	a.Flags.StringVar(&branching, "branching", branching, "branching check strategy: structural-scan|none")
	a.Flags.StringVar(&rolesFile, "roles", "", "YAML file with custom role definitions")

	a.Run = func(pass *analysis.Pass) (any, error) {
		once.Do(func() {
			resolved, setupErr = applyFlags(base, mutation, branching, rolesFile)
		})
		if setupErr != nil {
			return nil, setupErr
		}

		c := &checker{settings: resolved, files: pass.Files, pkg: pass.Pkg}
		for _, f := range c.run() {
			pass.Report(analysis.Diagnostic{
				Pos:      f.pos,
				Category: string(f.violation.Rule),
				Message:  f.violation.String(),
			})
		}
		return nil, nil
	}
	return a
}

func applyFlags(s settings, mutation, branching, rolesFile string) (settings, error) {
	m, err := domain.ParseMutationStrategy(mutation)
	if err != nil {
		return s, err
	}
	b, err := domain.ParseBranchingStrategy(branching)
	if err != nil {
		return s, err
	}
	s.mutation, s.branching = m, b

	if rolesFile != "" {
		reg := registry.New()
		if _, err := reg.LoadFile(rolesFile); err != nil {
			return s, fmt.Errorf("teamlint: %w", err)
		}
		s.registry = reg
	}
	return s, nil
}
