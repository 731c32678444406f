package executor_test

import (
	"context"
	"strings"

	"github.com/aretw0/teamwork/pkg/executor"
)

type Signup struct {
	Email string
	Plan  string
	Tags  map[string]string
}

type BusinessRuleError struct {
	Rule string
}

func (e *BusinessRuleError) Error() string { return "business rule violated: " + e.Rule }

var ErrQuota = &BusinessRuleError{Rule: "X"}

type ProfileFetcher struct{}

func (ProfileFetcher) FetchProfile(_ context.Context, s Signup) (Signup, error) {
	s.Plan = "free"
	return s, nil
}

type EmailWorker struct{}

func (EmailWorker) Normalize(s Signup) Signup {
	return Signup{Email: strings.ToLower(s.Email), Plan: s.Plan, Tags: s.Tags}
}

type QuotaWorker struct{}

func (QuotaWorker) Reserve(s Signup) (Signup, error) {
	return s, ErrQuota
}

type SignupDelegator struct {
	Fetcher ProfileFetcher `team:"fetcher:profile"`
	Worker  EmailWorker    `team:"worker:email"`
}

func (d SignupDelegator) Process(ctx context.Context, s Signup) (Signup, error) {
	s, err := d.Fetcher.FetchProfile(ctx, s)
	if err != nil {
		return s, err
	}
	return d.Worker.Normalize(s), nil
}

type QuotaDelegator struct {
	Worker QuotaWorker `team:"worker:quota"`
}

func (d QuotaDelegator) Process(_ context.Context, s Signup) (Signup, error) {
	return d.Worker.Reserve(s)
}

// ScribbleDelegator writes into the state it receives.
type ScribbleDelegator struct{}

func (ScribbleDelegator) Process(_ context.Context, s Signup) (Signup, error) {
	s.Email = "changed"
	s.Tags["touched"] = "yes"
	return s, nil
}

type SlowFetcher struct {
	release chan struct{}
}

func (f SlowFetcher) FetchProfile(ctx context.Context, s Signup) (Signup, error) {
	return executor.Suspend(ctx, func(context.Context) (Signup, error) {
		<-f.release
		return s, nil
	})
}

type SlowDelegator struct {
	Fetcher SlowFetcher `team:"fetcher:slow"`
}

func (d SlowDelegator) Process(ctx context.Context, s Signup) (Signup, error) {
	return d.Fetcher.FetchProfile(ctx, s)
}

type ChattyDelegator struct{}

func (ChattyDelegator) Process(_ context.Context, s Signup) (Signup, error) { return s, nil }

func (ChattyDelegator) Describe() string { return "chatty" }
