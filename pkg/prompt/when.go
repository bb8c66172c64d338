package prompt

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Enabled evaluates q.When against the answers collected so far.
// An empty expression is always enabled.
func (q Question) Enabled(answers Answers) (bool, error) {
	if q.When == "" {
		return true, nil
	}
	return EvalCondition(q.When, map[string]any{"answers": map[string]any(answers)})
}

// EvalCondition compiles and runs a boolean expression against env.
func EvalCondition(exprStr string, env map[string]any) (bool, error) {
	program, err := expr.Compile(exprStr, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", exprStr, err)
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", exprStr, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return bool (got %T: %v)", exprStr, output, output)
	}
	return result, nil
}
