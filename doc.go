/*
Package teamwork is a runtime for the Team Pattern: business logic split into
small components that each play one role, wired together by a container and
driven by a single Delegator.

# Roles

Every component declares a role when it is registered:

  - State: the immutable value threaded through a workflow.
  - Fetcher: reads from an external system (Fetch*, Load*, Get*, Find*).
  - Worker: transforms state without branching and without calling other workers.
  - Investigator: a pure boolean predicate (Is*, Has*, Can*, Should*).
  - Error: asserts a precondition and returns a business error (Assert*).
  - Delegator: the single Process entry point that orchestrates the others.

The structural contract of each role (method names, signatures, mutation,
branching and forbidden dependencies) is checked at registration time, before
any business code runs. Non-conforming components are rejected with a
*domain.ContractViolationError listing every violation.

# Usage

	rt, err := teamwork.New()
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	ctx := context.Background()
	_ = rt.Register(ctx, domain.KindWorker, "email", container.Instance(EmailWorker{}))
	_ = rt.Register(ctx, domain.KindDelegator, "signup", container.Struct[SignupDelegator]())

	out, err := teamwork.Execute(ctx, rt, "signup", Signup{Email: "ADA@EXAMPLE.COM"})

Dependencies are declared with `team:"kind:name"` struct tags or explicitly
through container.Factory. The container detects duplicate, unresolved and
cyclic dependencies before constructing anything.

Execution never mutates the caller's state, returns business errors exactly as
the components produced them, and reports cancellation as a distinct
*domain.CancelledError.

# Configuration

FromConfig maps a config.Config (defaults, YAML file, TEAMWORK_* environment)
onto Runtime options, including the validation result cache backend.

# Offline checking

Package lint applies the same rules to Go source annotated with //team:<kind>
directives, as a go/analysis Analyzer and through the teamwork CLI.
*/
package teamwork
