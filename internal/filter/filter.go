// Package filter selects change records with expr-lang expressions such as
// `Updated() && Under("spec")`.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/loog-project/treediff/pkg/treediff"
)

// DefaultExpression keeps every record.
const DefaultExpression = "All()"

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compile checks [expression] against [ChangeEnv] and requires a boolean
// result.
func Compile(expression string) (*Filter, error) {
	if expression == "" {
		expression = DefaultExpression
	}
	program, err := expr.Compile(expression, expr.Env(ChangeEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("cannot compile filter %q: %w", expression, err)
	}
	return &Filter{expression: expression, program: program}, nil
}

func (f *Filter) String() string {
	return f.expression
}

// Match evaluates the expression for a single record.
func (f *Filter) Match(c treediff.Change) (bool, error) {
	out, err := expr.Run(f.program, newChangeEnv(c))
	if err != nil {
		return false, fmt.Errorf("cannot evaluate filter for %s: %w", c.Path, err)
	}
	return out.(bool), nil
}

// Apply returns the records the expression accepts, keeping their order.
func (f *Filter) Apply(changes treediff.Changes) (treediff.Changes, error) {
	if f == nil || f.expression == DefaultExpression {
		return changes, nil
	}
	var out treediff.Changes
	for _, c := range changes {
		pass, err := f.Match(c)
		if err != nil {
			return nil, err
		}
		if pass {
			out = append(out, c)
		}
	}
	return out, nil
}
