package contract_test

import (
	"context"
	"errors"
	"strings"
)

type Signup struct {
	Email    string
	Tags     map[string]string
	Verified bool
}

type EmailWorker struct{}

func (EmailWorker) Normalize(s Signup) Signup {
	return Signup{
		Email:    strings.ToLower(strings.TrimSpace(s.Email)),
		Tags:     s.Tags,
		Verified: s.Verified,
	}
}

type BadWorker struct{}

func (BadWorker) Process(s Signup) Signup {
	if s.Email == "" {
		return Signup{}
	} else {
		return s
	}
}

type ContextWorker struct{}

func (ContextWorker) Verify(ctx context.Context, s Signup) (Signup, error) {
	return Signup{Email: s.Email, Tags: s.Tags, Verified: true}, ctx.Err()
}

type TwoArgWorker struct{}

func (TwoArgWorker) Merge(a, b Signup) Signup { return a }

type StringWorker struct{}

func (StringWorker) Lower(s string) string { return strings.ToLower(s) }

type PointerWorker struct{ seen int }

func (w *PointerWorker) Normalize(s *Signup) *Signup { return s }

type CountingWorker struct{ calls int }

func (w CountingWorker) Tag(s Signup) Signup {
	w.calls++
	s.Tags["seen"] = "yes"
	return s
}

type ChainedWorker struct {
	Next EmailWorker `team:"worker:email"`
}

func (w ChainedWorker) Normalize(s Signup) Signup {
	return w.Next.Normalize(s)
}

type normalizeBase struct{}

func (normalizeBase) Normalize(s Signup) Signup {
	if s.Email == "" {
		s.Email = "unknown"
	}
	return s
}

// EmbeddedWorker exposes Normalize through an embedded type.
type EmbeddedWorker struct {
	normalizeBase
}

type Normalizer interface {
	Normalize(s Signup) Signup
}

type InterfaceWorker struct {
	Normalizer
}

type LoopWorker struct{}

func (LoopWorker) Normalize(s Signup) Signup {
	for s.Email == "" {
		s.Email = "unknown"
		break
	}
	return s
}

type LabelWorker struct{}

func (LabelWorker) Tag(s Signup) Signup {
	tags := make(map[string]string, len(s.Tags))
keys:
	for k, v := range s.Tags {
		for range k {
			tags[k] = v
			continue keys
		}
	}
	return Signup{Email: s.Email, Tags: tags, Verified: s.Verified}
}

type VerifiedInvestigator struct{}

func (VerifiedInvestigator) IsVerified(s Signup) bool {
	return s.Verified && (s.Email != "" || !strings.Contains(s.Email, " "))
}

type BranchingInvestigator struct{}

func (BranchingInvestigator) IsVerified(s Signup) bool {
	switch {
	case s.Verified:
		return true
	}
	return false
}

type MisnamedInvestigator struct{}

func (MisnamedInvestigator) Verified(s Signup) bool { return s.Verified }

type ContextInvestigator struct{}

func (ContextInvestigator) IsVerified(ctx context.Context, s Signup) bool { return s.Verified }

var ErrMissingEmail = errors.New("email is required")

type EmailAssertions struct{}

func (EmailAssertions) AssertEmail(s Signup) error {
	if s.Email == "" {
		return ErrMissingEmail
	}
	return nil
}

type BoolAssertions struct{}

func (BoolAssertions) AssertEmail(s Signup) bool { return s.Email != "" }

type ProfileFetcher struct{}

func (ProfileFetcher) FetchProfile(ctx context.Context, s Signup) (Signup, error) {
	return s, nil
}

func (ProfileFetcher) Ping(ctx context.Context, addr string, retries int) error {
	return nil
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

type ChattyDelegator struct {
	Asserts EmailAssertions `team:"error:email"`
}

func (d ChattyDelegator) Process(ctx context.Context, s Signup) (Signup, error) {
	return s, d.Asserts.AssertEmail(s)
}

func (d ChattyDelegator) Describe() string { return "chatty" }

type SignupState struct {
	Email string
}

func (s SignupState) Domain() string {
	_, after, _ := strings.Cut(s.Email, "@")
	return after
}

func (s *SignupState) SetEmail(e string) { s.Email = e }

type KitchenSinkWorker struct {
	Peer EmailWorker `team:"worker:peer"`
}

func (w *KitchenSinkWorker) Apply(a, b *Signup) *Signup {
	if a == nil {
		return b
	}
	n := w.Peer.Normalize(*a)
	return &n
}
