package loader

import (
	"context"
	"strconv"
	"strings"

	"github.com/statewire/statewire/internal/primitives"
)

// ExpressionGuard parses a simple "key op value" string ("loggedIn ==
// true", "attempts < 3") and evaluates it against a machine's injected
// context keys, grounded on the teacher's
// internal/extensibility.ExpressionGuardEvaluator — generalized here
// into a primitives.Guard[C] so it can be registered under a name like
// any other guard (RegisterGuard("attemptsUnder3", ExpressionGuard("attempts < 3"))).
// Unparseable expressions and missing keys evaluate false rather than
// erroring, matching the teacher's fail-closed behavior for guards. A
// type mismatch makes ==, > and < false; != is the negation of ==, so
// a type mismatch makes it true.
func ExpressionGuard[C any](expr string) primitives.Guard[C] {
	parts := strings.Fields(expr)
	return func(ctx context.Context, cell *primitives.ContextCell[C], args ...any) (bool, error) {
		return evalExpr(cell, parts), nil
	}
}

func evalExpr[C any](cell *primitives.ContextCell[C], parts []string) bool {
	if len(parts) != 3 {
		return false
	}
	key, op, rhs := parts[0], parts[1], parts[2]
	v, ok := cell.Get(key)
	if !ok {
		return false
	}

	switch op {
	case "==":
		switch rhs {
		case "true":
			return v == true
		case "false":
			return v == false
		case "nil":
			return v == nil
		default:
			if f, isFloat := asFloat(v); isFloat {
				if rv, err := strconv.ParseFloat(rhs, 64); err == nil {
					return f == rv
				}
			}
			if s, isStr := v.(string); isStr {
				return s == rhs
			}
			return false
		}
	case "!=":
		return !evalExpr(cell, []string{key, "==", rhs})
	case ">":
		return compareFloat(v, rhs, func(a, b float64) bool { return a > b })
	case "<":
		return compareFloat(v, rhs, func(a, b float64) bool { return a < b })
	default:
		return false
	}
}

func compareFloat(v any, rhs string, cmp func(a, b float64) bool) bool {
	f, ok := asFloat(v)
	if !ok {
		return false
	}
	rv, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false
	}
	return cmp(f, rv)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
