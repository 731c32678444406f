package roles

import "context"

type Signup struct {
	Email string
	Tags  map[string]string
}

//team:worker
type EmailWorker struct{}

func (EmailWorker) Normalize(s Signup) Signup {
	return Signup{Email: s.Email, Tags: s.Tags}
}

//team:worker
type BadWorker struct{}

func (BadWorker) Process(s Signup) Signup {
	if s.Email == "" { // want `branching: contains if statement`
		return s
	}
	return Signup{Email: s.Email}
}

//team:worker
type PointerWorker struct{}

func (w *PointerWorker) Normalize(s *Signup) *Signup { // want `mutation: pointer receiver allows mutation` `mutation: state argument passed by pointer`
	return s
}

type normalizeBase struct{}

func (normalizeBase) Normalize(s Signup) Signup {
	for s.Email == "" { // want `branching: contains conditional for statement`
		s.Email = "unknown"
		break
	}
	return s
}

//team:worker
type EmbeddedWorker struct {
	normalizeBase
}

type Normalizer interface {
	Normalize(s Signup) Signup
}

//team:worker
type InterfaceWorker struct { // want `branching: body cannot be scanned: promoted from embedded interface roles.Normalizer`
	Normalizer
}

//team:worker
type LabelWorker struct{}

func (LabelWorker) Tag(s Signup) Signup {
	tags := make(map[string]string, len(s.Tags))
keys:
	for k, v := range s.Tags {
		for range k {
			tags[k] = v
			continue keys // want `branching: contains labelled continue statement`
		}
	}
	return Signup{Email: s.Email, Tags: tags}
}

//team:worker
type TwoArgWorker struct{}

func (TwoArgWorker) Merge(a, b Signup) Signup { // want `param-shape: takes 2 arguments`
	return Signup{Email: a.Email + b.Email}
}

//team:worker
type ChainWorker struct {
	Next EmailWorker `team:"worker:email"` // want `cross-role-call: depends on worker:email`
}

func (w ChainWorker) Normalize(s Signup) Signup {
	return w.Next.Normalize(s) // want `cross-role-call: calls Next.Normalize on worker:email`
}

//team:worker
type IdleWorker struct{} // want `method-name: has 0 exported methods`

//team:investigator
type Checks struct{}

func (Checks) IsVerified(s Signup) bool {
	return s.Email != "" && s.Tags["verified"] == "yes"
}

func (Checks) Lookup(s Signup) bool { // want `method-name: name does not match`
	return s.Email != ""
}

//team:error
type EmailAssertions struct{}

func (EmailAssertions) AssertEmail(s Signup) error {
	if s.Email == "" {
		return context.Canceled
	}
	return nil
}

//team:fetcher boundary=Ping
type ProfileFetcher struct{}

func (ProfileFetcher) FetchProfile(_ context.Context, s Signup) (Signup, error) {
	return s, nil
}

func (ProfileFetcher) Ping(_ context.Context, addr string) error { // want `method-name: name does not match`
	return nil
}

//team:delegator
type SignupDelegator struct {
	Errors EmailAssertions `team:"error:email"` // want `cross-role-call: depends on error:email`
	Fetch  ProfileFetcher  `team:"fetcher:profile"`
}

func (d SignupDelegator) Process(ctx context.Context, s Signup) (Signup, error) {
	out, err := d.Fetch.FetchProfile(ctx, s)
	if err != nil {
		return s, err
	}
	return out, d.Errors.AssertEmail(out)
}

//team:auditor
type Audit struct{} // want `directive: unknown role kind`

// Plain types are not checked.
type Helper struct{}

func (h *Helper) Set(s *Signup) {
	s.Email = ""
}
