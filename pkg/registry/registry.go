package registry

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/aretw0/teamwork/pkg/domain"
)

// Handle is returned by DefineRole. It gives access to the compiled contract.
type Handle struct {
	def     domain.RoleDefinition
	pattern *regexp.Regexp
}

// Kind returns the role kind.
func (h Handle) Kind() domain.Kind { return h.def.Kind }

// Definition returns a copy of the registered contract.
func (h Handle) Definition() domain.RoleDefinition { return h.def.Clone() }

// MatchMethod reports whether name satisfies the role's method pattern.
func (h Handle) MatchMethod(name string) bool {
	return h.pattern == nil || h.pattern.MatchString(name)
}

// Registry holds the role contracts of a process.
type Registry struct {
	mu    sync.RWMutex
	roles map[domain.Kind]Handle
}

// New creates a registry preloaded with the built-in roles.
func New() *Registry {
	r := NewEmpty()
	for _, def := range Builtin() {
		if _, err := r.DefineRole(def); err != nil {
			panic(fmt.Sprintf("registry: invalid builtin role %s: %v", def.Kind, err))
		}
	}
	return r
}

// NewEmpty creates a registry without any role.
func NewEmpty() *Registry {
	return &Registry{
		roles: make(map[domain.Kind]Handle),
	}
}

// DefineRole adds a role contract. Definitions are immutable: defining an
// existing kind fails with domain.ErrDuplicateRegistration.
func (r *Registry) DefineRole(def domain.RoleDefinition) (Handle, error) {
	if def.Kind == "" {
		return Handle{}, fmt.Errorf("%w: empty kind", domain.ErrInvalidRole)
	}
	if def.MaxMethods > 0 && def.MinMethods > def.MaxMethods {
		return Handle{}, fmt.Errorf("%w: %s: min_methods %d exceeds max_methods %d",
			domain.ErrInvalidRole, def.Kind, def.MinMethods, def.MaxMethods)
	}
	if def.Params == "" {
		def.Params = domain.ParamsAny
	}
	if len(def.Results) == 0 {
		def.Results = []domain.ResultShape{domain.ResultsAny}
	}

	h := Handle{def: def.Clone()}
	if def.MethodPattern != "" {
		re, err := regexp.Compile(def.MethodPattern)
		if err != nil {
			return Handle{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRole, def.Kind, err)
		}
		h.pattern = re
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.roles[def.Kind]; exists {
		return Handle{}, &domain.DuplicateRegistrationError{Ref: domain.Ref{Kind: "role", Name: string(def.Kind)}}
	}
	r.roles[def.Kind] = h
	return h, nil
}

// Handle returns the compiled contract of kind.
func (r *Registry) Handle(kind domain.Kind) (Handle, error) {
	r.mu.RLock()
	h, ok := r.roles[kind]
	r.mu.RUnlock()

	if !ok {
		return Handle{}, &domain.UnknownRoleError{Kind: kind}
	}
	return h, nil
}

// Lookup returns a copy of the contract of kind.
func (r *Registry) Lookup(kind domain.Kind) (domain.RoleDefinition, error) {
	h, err := r.Handle(kind)
	if err != nil {
		return domain.RoleDefinition{}, err
	}
	return h.Definition(), nil
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []domain.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.Kind, 0, len(r.roles))
	for k := range r.roles {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Definitions returns copies of every contract, ordered by kind.
func (r *Registry) Definitions() []domain.RoleDefinition {
	kinds := r.Kinds()
	out := make([]domain.RoleDefinition, 0, len(kinds))
	for _, k := range kinds {
		if def, err := r.Lookup(k); err == nil {
			out = append(out, def)
		}
	}
	return out
}
