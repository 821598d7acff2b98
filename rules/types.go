package rules

// Rule is a boolean CEL expression. Active rules run in ascending Priority
// order, ties broken by ID.
type Rule struct {
	ID         string
	Name       string
	Expression string
	Priority   int
	Active     bool
}

// EvaluationResult is the outcome of one rule against one set of facts
type EvaluationResult struct {
	RuleID   string
	RuleName string
	Matched  bool
	Error    error
}
