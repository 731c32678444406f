package registry

import "github.com/aretw0/teamwork/pkg/domain"

// Builtin returns the contract table of the six built-in roles.
func Builtin() []domain.RoleDefinition {
	return []domain.RoleDefinition{
		{
			Kind:             domain.KindState,
			Description:      "Immutable value carrying the data of a workflow stage",
			Params:           domain.ParamsAny,
			Results:          []domain.ResultShape{domain.ResultsAny},
			MutationAllowed:  false,
			BranchingAllowed: true,
		},
		{
			Kind:             domain.KindFetcher,
			Description:      "Reads from an external system and returns an enriched state",
			MethodPattern:    `^(Fetch|Load|Get|Find)`,
			MinMethods:       1,
			Params:           domain.ParamsContextState,
			Results:          []domain.ResultShape{domain.ResultStateError},
			MutationAllowed:  true,
			BranchingAllowed: true,
		},
		{
			Kind:                  domain.KindWorker,
			Description:           "Transforms a state into a new state without branching",
			MinMethods:            1,
			Params:                domain.ParamsContextState,
			Results:               []domain.ResultShape{domain.ResultState, domain.ResultStateError},
			MutationAllowed:       false,
			BranchingAllowed:      false,
			ForbiddenDependencies: []domain.Kind{domain.KindWorker},
		},
		{
			Kind:             domain.KindInvestigator,
			Description:      "Pure boolean predicate over a state",
			MethodPattern:    `^(Is|Has|Can|Should|Investigate$)`,
			MinMethods:       1,
			Params:           domain.ParamsState,
			Results:          []domain.ResultShape{domain.ResultBool},
			MutationAllowed:  false,
			BranchingAllowed: false,
		},
		{
			Kind:             domain.KindError,
			Description:      "Asserts a precondition and returns a business error when it does not hold",
			MethodPattern:    `^Assert`,
			MinMethods:       1,
			Params:           domain.ParamsState,
			Results:          []domain.ResultShape{domain.ResultError},
			MutationAllowed:  false,
			BranchingAllowed: true,
		},
		{
			Kind:                  domain.KindDelegator,
			Description:           "Single orchestration entry point of a workflow",
			MethodPattern:         `^Process$`,
			MinMethods:            1,
			MaxMethods:            1,
			Params:                domain.ParamsContextState,
			Results:               []domain.ResultShape{domain.ResultStateError},
			MutationAllowed:       true,
			BranchingAllowed:      true,
			ForbiddenDependencies: []domain.Kind{domain.KindError},
		},
	}
}
