package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/teamwork"
	"github.com/aretw0/teamwork/internal/testutils"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signupSrc = `package signup

type Signup struct {
	Email string
}

//team:worker
type TrimWorker struct{}

func (TrimWorker) Trim(s Signup) Signup {
	if s.Email == "" {
		return s
	}
	return Signup{Email: s.Email}
}

//team:worker
type EmailWorker struct{}

func (EmailWorker) Normalize(s Signup) Signup {
	return Signup{Email: s.Email + "!"}
}
`

// run executes the root command with flags reset to their defaults.
func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeModule(t *testing.T, src string) string {
	t.Helper()
	return testutils.SetupTestModule(t, map[string]string{"signup.go": src})
}

func TestVersion(t *testing.T) {
	out, err := run(t, context.Background(), "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, teamwork.Version+"\n", out)

	out, err = run(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version "+teamwork.Version)
}

func TestRoles(t *testing.T) {
	out, err := run(t, context.Background(), "roles")
	require.NoError(t, err)
	for _, k := range domain.BuiltinKinds {
		assert.Contains(t, out, string(k))
	}
}

func TestRoles_CustomJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  - kind: auditor\n    method_pattern: ^Audit\n"), 0o644))

	out, err := run(t, context.Background(), "roles", "--json", "--roles", path)
	require.NoError(t, err)

	var defs []domain.RoleDefinition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	assert.Len(t, defs, len(domain.BuiltinKinds)+1)
}

func TestCheck_ReportsViolations(t *testing.T) {
	dir := writeModule(t, signupSrc)

	out, err := run(t, context.Background(), "check", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 role contract violation")
	assert.Contains(t, out, "TrimWorker.Trim [worker] branching")
	assert.Contains(t, out, "✗ 1 violation")
}

func TestCheck_BranchingNone(t *testing.T) {
	dir := writeModule(t, signupSrc)

	out, err := run(t, context.Background(), "check", "--dir", dir, "--branching", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "all components respect their roles")
}

func TestCheck_InvalidStrategy(t *testing.T) {
	_, err := run(t, context.Background(), "check", "--dir", t.TempDir(), "--mutation", "psychic")
	assert.ErrorContains(t, err, "psychic")
}

func TestConfigFile(t *testing.T) {
	dir := writeModule(t, signupSrc)
	path := filepath.Join(t.TempDir(), "teamwork.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime:\n  branching_check: none\n"), 0o644))

	_, err := run(t, context.Background(), "check", "--dir", dir, "--config", path)
	assert.NoError(t, err)

	_, err = run(t, context.Background(), "roles", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := run(t, ctx, "serve", "--addr", "127.0.0.1:0")
	assert.NoError(t, err)
}
