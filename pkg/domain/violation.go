package domain

import "fmt"

// RuleID names a structural rule checked by the validator.
type RuleID string

const (
	RuleMethodName    RuleID = "method-name"
	RuleParamShape    RuleID = "param-shape"
	RuleResultShape   RuleID = "result-shape"
	RuleMutation      RuleID = "mutation"
	RuleBranching     RuleID = "branching"
	RuleCrossRoleCall RuleID = "cross-role-call"
)

// Violation records one mismatch between a component and its role.
type Violation struct {
	Kind      Kind   `json:"kind"`
	Component string `json:"component"`
	Method    string `json:"method,omitempty"`
	Rule      RuleID `json:"rule"`
	Message   string `json:"message"`
	// Position is "file:line" when the violation was found by a source scan.
	Position string `json:"position,omitempty"`
}

func (v Violation) String() string {
	target := v.Component
	if v.Method != "" {
		target += "." + v.Method
	}
	if v.Position != "" {
		return fmt.Sprintf("%s [%s] %s: %s (%s)", target, v.Kind, v.Rule, v.Message, v.Position)
	}
	return fmt.Sprintf("%s [%s] %s: %s", target, v.Kind, v.Rule, v.Message)
}

// ValidationResult is the outcome of validating one component against one role.
type ValidationResult struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations,omitempty"`
}

// Has reports whether a violation of the given rule was found.
func (r ValidationResult) Has(rule RuleID) bool {
	for _, v := range r.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// Rules returns the rule of every violation in detection order.
func (r ValidationResult) Rules() []RuleID {
	out := make([]RuleID, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Rule)
	}
	return out
}
