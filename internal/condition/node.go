package condition

// Operator is a comparison operator usable in condition leaves.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
)

// IsValid returns true if the operator is a known valid value.
func (o Operator) IsValid() bool {
	switch o {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual, OpNotEqual:
		return true
	default:
		return false
	}
}

// Node is the parsed form of a condition: a closed union of Comparison, And
// and Or. Nodes are built once per Validate/Evaluate call and never
// persisted.
type Node interface {
	node()
}

// Comparison is a leaf: one variable compared against an authored value.
// Value holds the greedily coerced literal (float64, bool, time.Time or
// string); the snapshot value's runtime type decides the final comparison.
type Comparison struct {
	Variable string
	Op       Operator
	Value    any
}

// And is true when every child is true. Evaluation short-circuits on the
// first false child.
type And struct {
	Children []Node
}

// Or is true when any child is true. Evaluation short-circuits on the first
// true child.
type Or struct {
	Children []Node
}

func (Comparison) node() {}
func (And) node()        {}
func (Or) node()         {}

// Variables returns the distinct variable names a parsed condition
// references, in first-appearance order.
func Variables(n Node) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case Comparison:
			if !seen[v.Variable] {
				seen[v.Variable] = true
				names = append(names, v.Variable)
			}
		case And:
			for _, c := range v.Children {
				walk(c)
			}
		case Or:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return names
}
