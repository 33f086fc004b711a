package condition

import (
	"errors"
	"testing"
	"time"
)

func TestParse_SimpleLeaf(t *testing.T) {
	n, err := Parse("documents_today < 50")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	leaf, ok := n.(Comparison)
	if !ok {
		t.Fatalf("node = %T, want Comparison", n)
	}
	if leaf.Variable != "documents_today" {
		t.Errorf("Variable = %v, want documents_today", leaf.Variable)
	}
	if leaf.Op != OpLess {
		t.Errorf("Op = %v, want <", leaf.Op)
	}
	if v, ok := leaf.Value.(float64); !ok || v != 50 {
		t.Errorf("Value = %v (%T), want 50 (float64)", leaf.Value, leaf.Value)
	}
}

func TestParse_SimpleAnd(t *testing.T) {
	n, err := Parse("error_rate > 5 AND documents_today >= 10")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	and, ok := n.(And)
	if !ok {
		t.Fatalf("node = %T, want And", n)
	}
	if len(and.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(and.Children))
	}
}

func TestParse_SimpleOr(t *testing.T) {
	n, err := Parse("cpu_usage > 90 OR memory_usage > 90")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	or, ok := n.(Or)
	if !ok {
		t.Fatalf("node = %T, want Or", n)
	}
	if len(or.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(or.Children))
	}
}

func TestParse_MixedCombinatorsRejected(t *testing.T) {
	_, err := Parse("a > 1 AND b > 1 OR c > 1")
	if !errors.Is(err, ErrMixedCombinators) {
		t.Errorf("err = %v, want ErrMixedCombinators", err)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, cond := range []string{"", "   "} {
		if _, err := Parse(cond); !errors.Is(err, ErrEmptyCondition) {
			t.Errorf("Parse(%q) err = %v, want ErrEmptyCondition", cond, err)
		}
	}
}

func TestParse_UnsupportedOperator(t *testing.T) {
	_, err := Parse("error_rate >> 5")
	if err == nil {
		t.Fatal("expected error for unsupported operator")
	}
}

func TestParse_MalformedLeaf(t *testing.T) {
	_, err := Parse("error_rate")
	if err == nil {
		t.Fatal("expected error for malformed comparison")
	}
}

func TestParse_ValueCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"error_rate > 5.5", 5.5},
		{"active_users = true", true},
		{"current_date >= 2026-01-15", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"last_result = TRIGGERED", "TRIGGERED"},
	}

	for _, tt := range tests {
		n, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.raw, err)
		}
		leaf := n.(Comparison)
		switch want := tt.want.(type) {
		case time.Time:
			got, ok := leaf.Value.(time.Time)
			if !ok || !got.Equal(want) {
				t.Errorf("Parse(%q) value = %v, want %v", tt.raw, leaf.Value, want)
			}
		default:
			if leaf.Value != tt.want {
				t.Errorf("Parse(%q) value = %v (%T), want %v", tt.raw, leaf.Value, leaf.Value, tt.want)
			}
		}
	}
}

func TestParse_Tree(t *testing.T) {
	cond := `{"AND":[{"variable":"error_rate","operator":">","value":5},{"OR":[{"variable":"current_hour","operator":">=","value":9},{"variable":"queue_size","operator":">","value":100}]}]}`

	n, err := Parse(cond)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	and, ok := n.(And)
	if !ok {
		t.Fatalf("node = %T, want And", n)
	}
	if len(and.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(and.Children))
	}
	if _, ok := and.Children[0].(Comparison); !ok {
		t.Errorf("first child = %T, want Comparison", and.Children[0])
	}
	if _, ok := and.Children[1].(Or); !ok {
		t.Errorf("second child = %T, want Or", and.Children[1])
	}
}

func TestParse_TreeUnknownKey(t *testing.T) {
	_, err := Parse(`{"NOT":[{"variable":"error_rate","operator":">","value":5}]}`)
	if err == nil {
		t.Fatal("expected error for unknown tree key")
	}
}

func TestParse_TreeIncompleteLeaf(t *testing.T) {
	_, err := Parse(`{"variable":"error_rate"}`)
	if err == nil {
		t.Fatal("expected error for leaf missing operator and value")
	}
}

func TestParse_TreeLeafMissingValue(t *testing.T) {
	_, err := Parse(`{"variable":"error_rate","operator":">"}`)
	if err == nil {
		t.Fatal("expected error for leaf missing value")
	}
}

func TestParse_TreeCombinatorWithLeafKeys(t *testing.T) {
	_, err := Parse(`{"AND":[{"variable":"error_rate","operator":">","value":5}],"variable":"queue_size","operator":">","value":100}`)
	if err == nil {
		t.Fatal("expected error for node mixing a combinator with leaf keys")
	}
}

func TestParse_TreeBothCombinators(t *testing.T) {
	_, err := Parse(`{"AND":[],"OR":[]}`)
	if err == nil {
		t.Fatal("expected error for node carrying both AND and OR")
	}
}

func TestParse_TreeMalformedJSON(t *testing.T) {
	_, err := Parse(`{"AND": [`)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestVariables(t *testing.T) {
	n, err := Parse("error_rate > 5 AND documents_today < 50 AND error_rate < 100")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	vars := Variables(n)
	want := []string{"error_rate", "documents_today"}
	if len(vars) != len(want) {
		t.Fatalf("Variables = %v, want %v", vars, want)
	}
	for i := range want {
		if vars[i] != want[i] {
			t.Errorf("Variables[%d] = %v, want %v", i, vars[i], want[i])
		}
	}
}
