package engine

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"formsmith-backend/internal/metadata"
)

// ExpressionEvaluator abstracts boolean expression evaluation for
// form-level submission rules and webhook conditions.
type ExpressionEvaluator interface {
	EvaluateBool(expression string, env map[string]any) (bool, error)
}

// ExprLangEvaluator uses expr-lang/expr for safe expression evaluation.
// Compiled programs are cached by expression string; form documents are
// replaced wholesale on edit, so a stale cache entry can only belong to
// an expression nobody references anymore. One evaluator is shared by
// every request handler, so cache access is mutex-guarded.
type ExprLangEvaluator struct {
	mu    sync.Mutex
	cache map[string]*vm.Program
}

func NewExprLangEvaluator() *ExprLangEvaluator {
	return &ExprLangEvaluator{
		cache: make(map[string]*vm.Program),
	}
}

func (e *ExprLangEvaluator) EvaluateBool(expression string, env map[string]any) (bool, error) {
	e.mu.Lock()
	prog, ok := e.cache[expression]
	e.mu.Unlock()
	if !ok {
		var err error
		prog, err = expr.Compile(expression, expr.AsBool())
		if err != nil {
			return false, fmt.Errorf("compile condition: %w", err)
		}
		e.mu.Lock()
		e.cache[expression] = prog
		e.mu.Unlock()
	}

	result, err := expr.Run(prog, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition: %w", err)
	}

	isTrue, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition did not return bool")
	}

	return isTrue, nil
}

// EvaluateSubmissionRules runs a form's expression rules over submitted
// answers. An expression that evaluates true describes a violation. Rules
// that fail to compile or evaluate are skipped: a broken expression must
// not brick the form.
func EvaluateSubmissionRules(eval ExpressionEvaluator, form *metadata.Form, answers map[string]any) []ErrorDetail {
	var details []ErrorDetail
	for _, rule := range form.SubmissionRules {
		if rule.Expression == "" {
			continue
		}
		violated, err := eval.EvaluateBool(rule.Expression, map[string]any{
			"answers": answers,
			"form":    map[string]any{"id": form.ID, "slug": form.Slug},
		})
		if err != nil {
			continue
		}
		if violated {
			msg := rule.Message
			if msg == "" {
				msg = "Submission rule violated"
			}
			details = append(details, ErrorDetail{Rule: "expression", Message: msg})
		}
	}
	return details
}
