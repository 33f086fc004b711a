package condition

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Evaluator validates and evaluates condition strings. It is stateless and
// safe for concurrent use.
type Evaluator struct {
	catalog *Catalog
	logger  *slog.Logger
}

// NewEvaluator creates an evaluator bound to a variable catalog.
func NewEvaluator(catalog *Catalog, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		logger:  logger,
	}
}

// Validate statically checks a condition: grammar, known variables, known
// operators. It is side-effect-free and surfaced synchronously to authors.
func (e *Evaluator) Validate(condition string) error {
	n, err := Parse(condition)
	if err != nil {
		return err
	}
	return e.validateNode(n)
}

func (e *Evaluator) validateNode(n Node) error {
	switch v := n.(type) {
	case Comparison:
		if !e.catalog.Has(v.Variable) {
			return fmt.Errorf("unknown variable %q", v.Variable)
		}
		return nil
	case And:
		for _, c := range v.Children {
			if err := e.validateNode(c); err != nil {
				return err
			}
		}
		return nil
	case Or:
		for _, c := range v.Children {
			if err := e.validateNode(c); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported condition node %T", n)
	}
}

// Evaluate runs a condition against a variable snapshot. Domain-level
// failures never propagate: a malformed condition, a variable missing from
// the snapshot, or an incoercible value all evaluate to false (fail-closed)
// with a warning log.
func (e *Evaluator) Evaluate(condition string, vars map[string]any) bool {
	n, err := Parse(condition)
	if err != nil {
		e.logger.Warn("condition failed to parse, treating as not met",
			"condition", condition,
			"error", err,
		)
		return false
	}
	return e.eval(n, vars)
}

// Referenced returns the variables a condition reads, for building the
// context excerpt carried on trigger events. A malformed condition
// references nothing.
func (e *Evaluator) Referenced(condition string) []string {
	n, err := Parse(condition)
	if err != nil {
		return nil
	}
	return Variables(n)
}

func (e *Evaluator) eval(n Node, vars map[string]any) bool {
	switch v := n.(type) {
	case Comparison:
		return e.compare(v, vars)
	case And:
		for _, c := range v.Children {
			if !e.eval(c, vars) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range v.Children {
			if e.eval(c, vars) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// compare resolves one leaf. The snapshot value's runtime type drives the
// comparison; the authored value is coerced to that type first.
func (e *Evaluator) compare(c Comparison, vars map[string]any) bool {
	cv, ok := vars[c.Variable]
	if !ok {
		e.logger.Warn("variable missing from snapshot, comparison is false",
			"variable", c.Variable,
		)
		return false
	}

	switch v := cv.(type) {
	case float64:
		want, ok := toFloat(c.Value)
		if !ok {
			e.warnCoercion(c, "numeric")
			return false
		}
		return compareFloats(v, c.Op, want)
	case int:
		want, ok := toFloat(c.Value)
		if !ok {
			e.warnCoercion(c, "numeric")
			return false
		}
		return compareFloats(float64(v), c.Op, want)
	case int64:
		want, ok := toFloat(c.Value)
		if !ok {
			e.warnCoercion(c, "numeric")
			return false
		}
		return compareFloats(float64(v), c.Op, want)
	case bool:
		want, ok := toBool(c.Value)
		if !ok {
			e.warnCoercion(c, "boolean")
			return false
		}
		switch c.Op {
		case OpEqual:
			return v == want
		case OpNotEqual:
			return v != want
		default:
			e.logger.Warn("boolean variables support only = and !=",
				"variable", c.Variable,
				"operator", string(c.Op),
			)
			return false
		}
	case time.Time:
		want, ok := toTime(c.Value)
		if !ok {
			e.warnCoercion(c, "date")
			return false
		}
		return compareTimes(v, c.Op, want)
	case string:
		want, ok := toString(c.Value)
		if !ok {
			e.warnCoercion(c, "string")
			return false
		}
		return compareStrings(v, c.Op, want)
	default:
		e.logger.Warn("snapshot value has unsupported type, comparison is false",
			"variable", c.Variable,
			"type", fmt.Sprintf("%T", cv),
		)
		return false
	}
}

func (e *Evaluator) warnCoercion(c Comparison, wantType string) {
	e.logger.Warn("authored value does not coerce to snapshot type, comparison is false",
		"variable", c.Variable,
		"value", fmt.Sprintf("%v", c.Value),
		"want_type", wantType,
	)
}

func compareFloats(v float64, op Operator, want float64) bool {
	switch op {
	case OpGreater:
		return v > want
	case OpGreaterEqual:
		return v >= want
	case OpLess:
		return v < want
	case OpLessEqual:
		return v <= want
	case OpEqual:
		return v == want
	case OpNotEqual:
		return v != want
	default:
		return false
	}
}

func compareStrings(v string, op Operator, want string) bool {
	switch op {
	case OpGreater:
		return v > want
	case OpGreaterEqual:
		return v >= want
	case OpLess:
		return v < want
	case OpLessEqual:
		return v <= want
	case OpEqual:
		return v == want
	case OpNotEqual:
		return v != want
	default:
		return false
	}
}

func compareTimes(v time.Time, op Operator, want time.Time) bool {
	switch op {
	case OpGreater:
		return v.After(want)
	case OpGreaterEqual:
		return v.After(want) || v.Equal(want)
	case OpLess:
		return v.Before(want)
	case OpLessEqual:
		return v.Before(want) || v.Equal(want)
	case OpEqual:
		return v.Equal(want)
	case OpNotEqual:
		return !v.Equal(want)
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	default:
		return false, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parseDate(t)
	default:
		return time.Time{}, false
	}
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
