package teamwork_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/teamwork"
	"github.com/aretw0/teamwork/pkg/config"
	"github.com/aretw0/teamwork/pkg/container"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Ledger struct {
	Total int
}

type LedgerAudit struct{}

func (LedgerAudit) AuditTotal(l Ledger) error {
	if l.Total < 0 {
		return errors.New("negative total")
	}
	return nil
}

func registerSignup(t *testing.T, rt *teamwork.Runtime) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, rt.Register(ctx, domain.KindFetcher, "profile", container.Instance(ProfileFetcher{})))
	require.NoError(t, rt.Register(ctx, domain.KindWorker, "email", container.Instance(EmailWorker{})))
	require.NoError(t, rt.Register(ctx, domain.KindDelegator, "signup", container.Struct[SignupDelegator]()))
}

func TestNew_Defaults(t *testing.T) {
	rt, err := teamwork.New()
	require.NoError(t, err)
	defer rt.Close()

	assert.ElementsMatch(t, domain.BuiltinKinds, rt.Registry().Kinds())
	assert.Same(t, rt.Validator(), rt.Container().Validator())

	err = rt.Register(context.Background(), domain.KindWorker, "trim", container.Instance(BranchyWorker{}))
	assert.ErrorIs(t, err, domain.ErrContractViolation)
}

func TestExecute_EndToEnd(t *testing.T) {
	rt, err := teamwork.New()
	require.NoError(t, err)
	registerSignup(t, rt)

	initial := Signup{Email: "ADA@EXAMPLE.COM"}
	out, err := teamwork.Execute(context.Background(), rt, "signup", initial)
	require.NoError(t, err)
	assert.Equal(t, Signup{Email: "ada@example.com", Name: "Ada"}, out)
	assert.Equal(t, "ADA@EXAMPLE.COM", initial.Email)

	w, err := teamwork.Resolve[EmailWorker](context.Background(), rt, domain.KindWorker, "email")
	require.NoError(t, err)
	assert.Equal(t, EmailWorker{}, w)
}

func TestValidate_Standalone(t *testing.T) {
	rt, err := teamwork.New()
	require.NoError(t, err)

	res, err := rt.Validate(context.Background(), SignupChecks{}, domain.KindInvestigator)
	require.NoError(t, err)
	assert.True(t, res.OK)

	res, err = rt.Validate(context.Background(), SignupChecks{}, domain.KindFetcher)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Empty(t, rt.Container().Inspect())
}

func TestWithOnViolation_Warn(t *testing.T) {
	rt, err := teamwork.New(teamwork.WithOnViolation(domain.OnViolationWarn))
	require.NoError(t, err)

	require.NoError(t, rt.Register(context.Background(), domain.KindWorker, "trim", container.Instance(BranchyWorker{})))
	bindings := rt.Container().Inspect()
	require.Len(t, bindings, 1)
	assert.Len(t, bindings[0].Violations, 1)
}

type NoisyDelegator struct{}

func (NoisyDelegator) Process(_ context.Context, s Signup) (Signup, error) {
	s.Name = "noisy"
	return s, nil
}

func (NoisyDelegator) Describe() string { return "noisy" }

func TestWithOnViolation_WarnExecutes(t *testing.T) {
	rt, err := teamwork.New(teamwork.WithOnViolation(domain.OnViolationWarn))
	require.NoError(t, err)
	require.NoError(t, rt.Register(context.Background(), domain.KindDelegator, "noisy", container.Instance(NoisyDelegator{})))

	out, err := teamwork.Execute(context.Background(), rt, "noisy", Signup{})
	require.NoError(t, err)
	assert.Equal(t, "noisy", out.Name)
}

func TestWithBranchingStrategy_None(t *testing.T) {
	rt, err := teamwork.New(teamwork.WithBranchingStrategy(domain.BranchingNone))
	require.NoError(t, err)
	assert.NoError(t, rt.Register(context.Background(), domain.KindWorker, "trim", container.Instance(BranchyWorker{})))
}

func TestDefineRole(t *testing.T) {
	rt, err := teamwork.New()
	require.NoError(t, err)

	_, err = rt.DefineRole(domain.RoleDefinition{
		Kind:             "auditor",
		MethodPattern:    `^Audit`,
		MinMethods:       1,
		Params:           domain.ParamsState,
		Results:          []domain.ResultShape{domain.ResultError},
		BranchingAllowed: true,
	})
	require.NoError(t, err)
	assert.NoError(t, rt.Register(context.Background(), "auditor", "ledger", container.Instance(LedgerAudit{})))
}

func TestWithRolesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
roles:
  - kind: auditor
    method_pattern: ^Audit
    min_methods: 1
    params: state
    results: [error]
    branching_allowed: true
`), 0o644))

	rt, err := teamwork.New(teamwork.WithRolesFile(path))
	require.NoError(t, err)
	assert.NoError(t, rt.Register(context.Background(), "auditor", "ledger", container.Instance(LedgerAudit{})))

	_, err = teamwork.New(teamwork.WithRolesFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestWithLifecycleHooks_Accumulate(t *testing.T) {
	var first, second int
	rt, err := teamwork.New(
		teamwork.WithLifecycleHooks(domain.LifecycleHooks{
			OnRegister: func(context.Context, *domain.RegisterEvent) { first++ },
		}),
		teamwork.WithLifecycleHooks(domain.LifecycleHooks{
			OnRegister: func(context.Context, *domain.RegisterEvent) { second++ },
		}),
	)
	require.NoError(t, err)
	registerSignup(t, rt)
	assert.Equal(t, 3, first)
	assert.Equal(t, 3, second)
}

func TestHandler_WithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, err := teamwork.New(teamwork.WithMetrics(reg))
	require.NoError(t, err)
	registerSignup(t, rt)

	_, err = teamwork.Execute(context.Background(), rt, "signup", Signup{Email: "x@example.com"})
	require.NoError(t, err)
	n, err := testutil.GatherAndCount(reg, "teamwork_executions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	srv := httptest.NewServer(rt.Handler())
	defer srv.Close()
	for _, path := range []string{"/roles", "/components", "/graph", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestFromConfig_Defaults(t *testing.T) {
	rt, err := teamwork.FromConfig(nil)
	require.NoError(t, err)
	defer rt.Close()
	registerSignup(t, rt)
}

func TestFromConfig_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Runtime.OnViolation = "ignore"
	_, err := teamwork.FromConfig(&cfg)
	assert.ErrorContains(t, err, "ignore")
}

func TestFromConfig_TransientWarn(t *testing.T) {
	cfg := config.Default()
	cfg.Runtime.Lifecycle = "transient"
	cfg.Runtime.OnViolation = "warn"
	cfg.Cache.Backend = "memory"

	rt, err := teamwork.FromConfig(&cfg)
	require.NoError(t, err)
	require.NoError(t, rt.Register(context.Background(), domain.KindWorker, "trim", container.Instance(BranchyWorker{})))
	require.NoError(t, rt.Register(context.Background(), domain.KindDelegator, "signup", container.Struct[SignupDelegator]()))

	for _, b := range rt.Container().Inspect() {
		if b.Ref.Kind == domain.KindDelegator {
			assert.Equal(t, domain.Transient, b.Lifecycle)
		}
	}
}

func TestFromConfig_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = mr.Addr()

	rt, err := teamwork.FromConfig(&cfg)
	require.NoError(t, err)
	registerSignup(t, rt)
	assert.NotEmpty(t, mr.Keys())
	assert.NoError(t, rt.Close())
}

func TestFromConfig_OptionsOverride(t *testing.T) {
	cfg := config.Default()
	rt, err := teamwork.FromConfig(&cfg, teamwork.WithOnViolation(domain.OnViolationWarn))
	require.NoError(t, err)
	assert.NoError(t, rt.Register(context.Background(), domain.KindWorker, "trim", container.Instance(BranchyWorker{})))
}
