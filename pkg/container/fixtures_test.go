package container_test

import (
	"context"
	"strings"
	"sync/atomic"
)

type Signup struct {
	Email string
	Name  string
}

type EmailWorker struct{}

func (EmailWorker) Normalize(s Signup) Signup {
	return Signup{Email: strings.ToLower(strings.TrimSpace(s.Email)), Name: s.Name}
}

type BadWorker struct{}

func (BadWorker) Normalize(s Signup) Signup {
	if s.Email == "" {
		return s
	}
	return Signup{Email: strings.ToLower(s.Email), Name: s.Name}
}

type ProfileFetcher struct{}

func (ProfileFetcher) FetchProfile(_ context.Context, s Signup) (Signup, error) {
	s.Name = "Ana"
	return s, nil
}

type SignupDelegator struct {
	Fetcher ProfileFetcher `team:"fetcher:profile"`
	Worker  EmailWorker    `team:"worker:email"`
}

func (d SignupDelegator) Process(ctx context.Context, s Signup) (Signup, error) {
	p, err := d.Fetcher.FetchProfile(ctx, s)
	if err != nil {
		return s, err
	}
	return d.Worker.Normalize(p), nil
}

type WorkerPair struct {
	Next EmailWorker `team:"worker:email"`
}

func (w WorkerPair) Normalize(s Signup) Signup {
	return w.Next.Normalize(s)
}

type Pool struct {
	closed *atomic.Int32
}

func (p Pool) Close() error {
	p.closed.Add(1)
	return nil
}
