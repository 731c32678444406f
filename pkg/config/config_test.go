package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/teamwork/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "singleton", cfg.Runtime.Lifecycle)
	assert.Equal(t, "type-based", cfg.Runtime.MutationCheck)
	assert.Equal(t, "structural-scan", cfg.Runtime.BranchingCheck)
	assert.Equal(t, "reject", cfg.Runtime.OnViolation)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Empty(t, cfg.RolesFile)

	assert.Equal(t, *cfg, config.Default())
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teamwork.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
  format: json
runtime:
  lifecycle: transient
  mutation_check: structural-scan
cache:
  backend: redis
  redis_addr: cache:6379
  ttl: 1h
roles_file: roles.yaml
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "transient", cfg.Runtime.Lifecycle)
	assert.Equal(t, "structural-scan", cfg.Runtime.MutationCheck)
	assert.Equal(t, "structural-scan", cfg.Runtime.BranchingCheck, "unset keys keep defaults")
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "roles.yaml", cfg.RolesFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "runtime:\n  on_violation: reject\n")
	t.Setenv("TEAMWORK_RUNTIME_ON_VIOLATION", "warn")
	t.Setenv("TEAMWORK_BRANCHING_CHECK", "ignored")
	t.Setenv("TEAMWORK_RUNTIME_BRANCHING_CHECK", "none")
	t.Setenv("TEAMWORK_ROLES_FILE", "/etc/roles.yaml")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Runtime.OnViolation)
	assert.Equal(t, "none", cfg.Runtime.BranchingCheck)
	assert.Equal(t, "/etc/roles.yaml", cfg.RolesFile)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, `
runtime:
  lifecycle: scoped
  mutation_check: magic
log:
  format: xml
cache:
  backend: disk
`)
	_, err := config.Load(path)
	require.Error(t, err)
	for _, want := range []string{"scoped", "magic", "xml", "disk"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_RedisNeedsAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = ""
	assert.ErrorContains(t, cfg.Validate(), "redis_addr")
}
