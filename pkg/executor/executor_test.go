package executor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/teamwork/pkg/container"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Completes(t *testing.T) {
	e := executor.New()
	out, err := executor.Run[Signup](context.Background(), e, SignupDelegator{}, Signup{Email: "ANA@EXAMPLE.COM"})
	require.NoError(t, err)
	assert.Equal(t, Signup{Email: "ana@example.com", Plan: "free"}, out)
}

func TestRun_BusinessErrorPropagatesUnchanged(t *testing.T) {
	e := executor.New()
	_, err := executor.Run[Signup](context.Background(), e, QuotaDelegator{}, Signup{})

	require.Error(t, err)
	assert.Same(t, ErrQuota, err)
	assert.Equal(t, "business rule violated: X", err.Error())
	assert.NotErrorIs(t, err, domain.ErrCancelled)
	assert.NotErrorIs(t, err, domain.ErrContractViolation)
}

func TestRun_InitialStateNeverMutated(t *testing.T) {
	e := executor.New()
	initial := Signup{Email: "ana@example.com", Tags: map[string]string{"source": "web"}}

	out, err := executor.Run[Signup](context.Background(), e, ScribbleDelegator{}, initial)
	require.NoError(t, err)

	assert.Equal(t, "changed", out.Email)
	assert.Equal(t, "yes", out.Tags["touched"])
	assert.Equal(t, "ana@example.com", initial.Email)
	assert.Equal(t, map[string]string{"source": "web"}, initial.Tags)
}

func TestRun_CancelledDuringSuspendedFetch(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	e := executor.New()
	start := time.Now()
	_, err := executor.Run[Signup](ctx, e, SlowDelegator{Fetcher: SlowFetcher{release: release}}, Signup{})

	assert.Less(t, time.Since(start), time.Second)
	var cancelled *domain.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, "SlowDelegator", cancelled.Delegator)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var business *BusinessRuleError
	assert.False(t, errors.As(err, &business))
	assert.NotErrorIs(t, err, domain.ErrContractViolation)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	d := domain.DelegatorFunc[Signup](func(_ context.Context, s Signup) (Signup, error) {
		called = true
		return s, nil
	})
	_, err := executor.Run[Signup](ctx, executor.New(), d, Signup{})

	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRun_BusinessErrorWinsOverLateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := domain.DelegatorFunc[Signup](func(_ context.Context, s Signup) (Signup, error) {
		cancel()
		return s, ErrQuota
	})

	_, err := executor.Run[Signup](ctx, executor.New(), d, Signup{})
	assert.Same(t, ErrQuota, err)
}

func TestRun_RejectsInvalidDelegatorOncePerType(t *testing.T) {
	e := executor.New()

	_, err := executor.Run[Signup](context.Background(), e, ChattyDelegator{}, Signup{})
	require.ErrorIs(t, err, domain.ErrContractViolation)
	assert.True(t, domain.Violations(err)[0].Rule == domain.RuleMethodName)

	_, again := executor.Run[Signup](context.Background(), e, ChattyDelegator{}, Signup{})
	assert.Same(t, err, again, "the verdict for a type is computed once")
}

func TestRun_WarnPolicyRunsNonConformingDelegator(t *testing.T) {
	e := executor.New(executor.WithOnViolation(domain.OnViolationWarn))

	out, err := executor.Run[Signup](context.Background(), e, ChattyDelegator{}, Signup{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", out.Email)
}

func TestExecute_WarnPolicyMatchesContainer(t *testing.T) {
	ctx := context.Background()
	c := container.New(nil, container.WithOnViolation(domain.OnViolationWarn))
	require.NoError(t, c.Register(ctx, domain.KindDelegator, "chatty", container.Instance(ChattyDelegator{})))

	_, err := executor.Execute(ctx, executor.New(), c, "chatty", Signup{})
	require.ErrorIs(t, err, domain.ErrContractViolation, "reject is the default")

	out, err := executor.Execute(ctx, executor.New(executor.WithOnViolation(domain.OnViolationWarn)), c, "chatty", Signup{Plan: "pro"})
	require.NoError(t, err)
	assert.Equal(t, "pro", out.Plan)
}

func TestInvocation_StateMachine(t *testing.T) {
	e := executor.New()

	ok := executor.NewInvocation[Signup](e, SignupDelegator{})
	assert.Equal(t, executor.StatusIdle, ok.Status())
	_, err := ok.Run(context.Background(), Signup{})
	require.NoError(t, err)
	assert.Equal(t, executor.StatusCompleted, ok.Status())

	_, err = ok.Run(context.Background(), Signup{})
	assert.ErrorIs(t, err, domain.ErrInvocationSpent)
	assert.Equal(t, executor.StatusCompleted, ok.Status())

	failed := executor.NewInvocation[Signup](e, QuotaDelegator{})
	_, err = failed.Run(context.Background(), Signup{})
	require.Error(t, err)
	assert.Equal(t, executor.StatusFailed, failed.Status())
	assert.Same(t, ErrQuota, failed.Err())

	_, err = failed.Run(context.Background(), Signup{})
	assert.ErrorIs(t, err, domain.ErrInvocationSpent)
}

func TestRun_Hooks(t *testing.T) {
	var outcomes []domain.Outcome
	var starts int
	e := executor.New(executor.WithHooks(domain.LifecycleHooks{
		OnExecuteStart: func(context.Context, *domain.ExecuteEvent) { starts++ },
		OnExecuteEnd: func(_ context.Context, ev *domain.ExecuteEvent) {
			outcomes = append(outcomes, ev.Outcome)
		},
	}))

	_, _ = executor.Run[Signup](context.Background(), e, SignupDelegator{}, Signup{})
	_, _ = executor.Run[Signup](context.Background(), e, QuotaDelegator{}, Signup{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = executor.Run[Signup](ctx, e, SignupDelegator{}, Signup{})

	assert.Equal(t, 3, starts)
	assert.Equal(t, []domain.Outcome{domain.OutcomeCompleted, domain.OutcomeFailed, domain.OutcomeCancelled}, outcomes)
}

func TestExecute_ResolvesThroughContainer(t *testing.T) {
	ctx := context.Background()
	c := container.New(nil)
	require.NoError(t, c.Register(ctx, domain.KindFetcher, "profile", container.Instance(ProfileFetcher{})))
	require.NoError(t, c.Register(ctx, domain.KindWorker, "email", container.Instance(EmailWorker{})))
	require.NoError(t, c.Register(ctx, domain.KindDelegator, "signup", container.Struct[SignupDelegator]()))

	var names []string
	e := executor.New(executor.WithHooks(domain.LifecycleHooks{
		OnExecuteEnd: func(_ context.Context, ev *domain.ExecuteEvent) { names = append(names, ev.Delegator) },
	}))

	out, err := executor.Execute(ctx, e, c, "signup", Signup{Email: "BOB@EXAMPLE.COM"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", out.Email)
	assert.Equal(t, []string{"signup"}, names)

	_, err = executor.Execute(ctx, e, c, "missing", Signup{})
	assert.ErrorIs(t, err, domain.ErrUnresolvedDependency)
}

func TestExecute_WrongStateType(t *testing.T) {
	ctx := context.Background()
	c := container.New(nil)
	require.NoError(t, c.Register(ctx, domain.KindDelegator, "chatless", container.Instance(QuotaDelegator{})))

	type Other struct{ ID int }
	_, err := executor.Execute(ctx, executor.New(), c, "chatless", Other{})
	assert.Error(t, err)
}

func TestSuspend(t *testing.T) {
	out, err := executor.Suspend(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = executor.Suspend(ctx, func(context.Context) (int, error) {
		t.Fatal("not called on a finished context")
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
