// Package policy implements an opt-in, narrowing-only alternative to the
// static capability registry's allow check (SPEC_FULL.md supplemented
// feature 6): an expr-lang boolean expression evaluated per token.
package policy

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mantle-dev/mantle/internal/domain/capability"
)

// CapabilityEnv is the environment an ExprPolicy expression is evaluated
// against, one token at a time.
type CapabilityEnv struct {
	Kind      string `expr:"kind"`
	Name      string `expr:"name"`
	RiskLevel string `expr:"risk_level"`
}

// ExprPolicy compiles once and evaluates a boolean expr-lang expression
// against each requested token. It can only narrow what the static
// registry already allows: a token is granted only if both the registry
// includes it AND the expression evaluates true for it.
type ExprPolicy struct {
	program *vm.Program
}

// NewExprPolicy compiles source, e.g. `risk_level != "high" || kind == "log"`.
func NewExprPolicy(source string) (*ExprPolicy, error) {
	program, err := expr.Compile(source, expr.Env(CapabilityEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile capability policy expression: %w", err)
	}
	return &ExprPolicy{program: program}, nil
}

// Allows evaluates the compiled expression for tok.
func (p *ExprPolicy) Allows(tok capability.Token) (bool, error) {
	env := CapabilityEnv{
		Kind:      tok.Kind,
		Name:      tok.Name,
		RiskLevel: capability.RiskOf(tok).String(),
	}
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate capability policy expression: %w", err)
	}
	allowed, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("capability policy expression did not evaluate to a boolean")
	}
	return allowed, nil
}

// Narrow filters granted down to the tokens both the static registry and
// this policy allow.
func (p *ExprPolicy) Narrow(granted capability.Set) (capability.Set, error) {
	var out capability.Set
	for _, tok := range granted {
		allowed, err := p.Allows(tok)
		if err != nil {
			return nil, err
		}
		if allowed {
			out = append(out, tok)
		}
	}
	return out, nil
}
