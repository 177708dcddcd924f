// Package visibility defines the contract for conditionally hiding resource
// fields. Rules travel as strings in field metadata; an Evaluator decides per
// request whether the field stays on the rendered surface.
package visibility

// Evaluator determines whether a field should be visible based on a rule
// string and optional context such as current row values or scope metadata.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values typically holds the row or
// prefill data under evaluation while Extras lets callers inject arbitrary
// request scope such as user roles or feature flags.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
