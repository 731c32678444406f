package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultCacheContract runs a suite of tests to verify that a ResultCache implementation
// adheres to the defined interface contract.
func RunResultCacheContract(t *testing.T, cache ResultCache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405.000000000")

	t.Run("Miss", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, "missing-"+key)
		require.NoError(t, err, "Get on a missing key should not return error")
		assert.False(t, ok)
	})

	t.Run("Put and Get", func(t *testing.T) {
		result := domain.ValidationResult{
			OK: false,
			Violations: []domain.Violation{
				{
					Kind:      domain.KindWorker,
					Component: "BadWorker",
					Method:    "Process",
					Rule:      domain.RuleBranching,
					Message:   "if statement",
					Position:  "bad.go:12",
				},
			},
		}

		require.NoError(t, cache.Put(ctx, key, result), "Put should not return error")

		loaded, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, result, loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, domain.ValidationResult{OK: true}))

		loaded, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, loaded.OK)
		assert.Empty(t, loaded.Violations)
	})

	t.Run("Isolation", func(t *testing.T) {
		isolated := key + "-isolated"
		result := domain.ValidationResult{
			Violations: []domain.Violation{{Kind: domain.KindWorker, Component: "BadWorker", Rule: domain.RuleMutation, Message: "writes w.calls"}},
		}
		require.NoError(t, cache.Put(ctx, isolated, result))
		result.Violations[0].Message = "changed after put"

		loaded, ok, err := cache.Get(ctx, isolated)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "writes w.calls", loaded.Violations[0].Message)

		loaded.Violations[0].Message = "changed after get"
		again, _, err := cache.Get(ctx, isolated)
		require.NoError(t, err)
		assert.Equal(t, "writes w.calls", again.Violations[0].Message)
	})
}
