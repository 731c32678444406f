package ports

import (
	"context"

	"github.com/aretw0/teamwork/pkg/domain"
)

// ResultCache defines the interface for caching validation results.
// Keys are opaque strings computed by the validator; a key changes whenever the
// component type, its dependencies, the check strategies or its source change.
type ResultCache interface {
	// Get returns the cached result and true, or false when the key is absent.
	Get(ctx context.Context, key string) (domain.ValidationResult, bool, error)

	// Put stores the result for key, replacing any previous value.
	Put(ctx context.Context, key string, result domain.ValidationResult) error
}
