/*
Package dsl builds Delegators from role steps instead of hand-written
orchestration code.

A Flow threads the state through its steps in order. Guards take an
Investigator, so the flow itself carries no branching: when the question
is answered "no" the guarded steps are skipped and the state flows on
unchanged.

	flow, err := dsl.New[Signup]("signup").
		Fetch(profiles.FetchProfile).
		Work(emails.Normalize).
		When(predicate.Not(isVerified),
			dsl.Assert(assertions.AssertEmail),
			dsl.Work(verifier.Verify),
		).
		Build()

	out, err := executor.Run[Signup](ctx, exec, flow, Signup{Email: "Ana@Example.com"})
*/
package dsl
