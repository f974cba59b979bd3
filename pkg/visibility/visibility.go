// Package visibility resolves which questions of a sibling list are visible
// and which are required, given the disclosure actions declared in the schema
// and the current answers. Results are memoized until the next Clear.
package visibility

// Evaluator decides whether an expression-gated element (a page with a
// visible_if rule) is shown.
type Evaluator interface {
	Eval(rule string, ctx Context) (bool, error)
}

// Context carries the inputs of an Evaluator. Lookup resolves a question code
// to its current value; Extras lets callers inject flags such as the taxpayer
// residency status.
type Context struct {
	Lookup func(code string) (string, bool)
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(rule string, ctx Context) (bool, error) {
	return fn(rule, ctx)
}
