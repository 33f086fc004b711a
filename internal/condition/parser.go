package condition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parsing errors shared by both grammars.
var (
	ErrEmptyCondition   = errors.New("condition is empty")
	ErrMixedCombinators = errors.New("conditions mixing AND and OR must use the JSON tree grammar")
)

const (
	sepAnd = " AND "
	sepOr  = " OR "
)

// Date layouts accepted for authored date/time literals.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// Parse turns an authored condition string into a Node. The grammar is
// detected by a cheap probe: a trimmed string wrapped in braces is the JSON
// tree grammar, anything else the flat infix grammar.
func Parse(condition string) (Node, error) {
	s := strings.TrimSpace(condition)
	if s == "" {
		return nil, ErrEmptyCondition
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return parseTree([]byte(s))
	}
	return parseSimple(s)
}

// parseSimple handles `<var> <op> <value>` leaves joined by ` AND ` or
// ` OR `. The two combinators are mutually exclusive within one condition.
func parseSimple(s string) (Node, error) {
	hasAnd := strings.Contains(s, sepAnd)
	hasOr := strings.Contains(s, sepOr)
	if hasAnd && hasOr {
		return nil, ErrMixedCombinators
	}

	switch {
	case hasAnd:
		children, err := parseLeaves(strings.Split(s, sepAnd))
		if err != nil {
			return nil, err
		}
		return And{Children: children}, nil
	case hasOr:
		children, err := parseLeaves(strings.Split(s, sepOr))
		if err != nil {
			return nil, err
		}
		return Or{Children: children}, nil
	default:
		return parseLeaf(s)
	}
}

func parseLeaves(parts []string) ([]Node, error) {
	children := make([]Node, 0, len(parts))
	for _, p := range parts {
		leaf, err := parseLeaf(p)
		if err != nil {
			return nil, err
		}
		children = append(children, leaf)
	}
	return children, nil
}

func parseLeaf(s string) (Node, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("malformed comparison %q: expected '<variable> <operator> <value>'", strings.TrimSpace(s))
	}
	op := Operator(parts[1])
	if !op.IsValid() {
		return nil, fmt.Errorf("unsupported operator %q", parts[1])
	}
	return Comparison{
		Variable: parts[0],
		Op:       op,
		Value:    coerceLiteral(strings.TrimSpace(parts[2])),
	}, nil
}

// coerceLiteral greedily types an authored value: numeric, then boolean,
// then date/time, else raw string.
func coerceLiteral(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if t, ok := parseDate(raw); ok {
		return t
	}
	return strings.Trim(raw, `"'`)
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// treeNode is the raw JSON shape of one tree-grammar node.
type treeNode struct {
	And      []json.RawMessage `json:"AND"`
	Or       []json.RawMessage `json:"OR"`
	Variable *string           `json:"variable"`
	Operator *string           `json:"operator"`
	Value    any               `json:"value"`
}

// parseTree handles the JSON tree grammar: an object carrying exactly one of
// an AND array, an OR array, or the variable/operator/value leaf triple.
func parseTree(data []byte) (Node, error) {
	// First pass walks the raw key set. Unknown keys, combinator nodes that
	// also carry leaf keys, and leaves missing part of the triple are all
	// validation errors. The key set is the only reliable way to detect a
	// missing "value", since `"value": null` decodes the same as absence.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("malformed condition tree: %w", err)
	}
	for k := range keys {
		switch k {
		case "AND", "OR", "variable", "operator", "value":
		default:
			return nil, fmt.Errorf("unknown key %q in condition tree", k)
		}
	}
	_, hasAnd := keys["AND"]
	_, hasOr := keys["OR"]
	_, hasVariable := keys["variable"]
	_, hasOperator := keys["operator"]
	_, hasValue := keys["value"]

	var tn treeNode
	if err := json.Unmarshal(data, &tn); err != nil {
		return nil, fmt.Errorf("malformed condition tree: %w", err)
	}

	if hasAnd || hasOr {
		switch {
		case hasAnd && hasOr:
			return nil, errors.New("condition tree node cannot carry both AND and OR")
		case hasVariable || hasOperator || hasValue:
			return nil, errors.New("condition tree node cannot mix a combinator with leaf keys")
		case hasAnd:
			children, err := parseSubtrees(tn.And)
			if err != nil {
				return nil, err
			}
			return And{Children: children}, nil
		default:
			children, err := parseSubtrees(tn.Or)
			if err != nil {
				return nil, err
			}
			return Or{Children: children}, nil
		}
	}

	if !hasVariable || !hasOperator || !hasValue {
		return nil, errors.New("condition tree leaf requires 'variable', 'operator' and 'value'")
	}
	if tn.Variable == nil || tn.Operator == nil {
		return nil, errors.New("condition tree leaf requires non-null 'variable' and 'operator'")
	}
	op := Operator(*tn.Operator)
	if !op.IsValid() {
		return nil, fmt.Errorf("unsupported operator %q", *tn.Operator)
	}
	return Comparison{
		Variable: *tn.Variable,
		Op:       op,
		Value:    coerceJSONValue(tn.Value),
	}, nil
}

func parseSubtrees(raws []json.RawMessage) ([]Node, error) {
	if len(raws) == 0 {
		return nil, errors.New("combinator requires at least one subtree")
	}
	children := make([]Node, 0, len(raws))
	for _, raw := range raws {
		child, err := parseTree(raw)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// coerceJSONValue aligns tree-grammar leaf values with the simple grammar's
// coercion: JSON already types numbers and booleans, strings may still be
// dates.
func coerceJSONValue(v any) any {
	if s, ok := v.(string); ok {
		if t, ok := parseDate(s); ok {
			return t
		}
	}
	return v
}
