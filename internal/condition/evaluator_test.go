package condition

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func testEvaluator() *Evaluator {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewEvaluator(DefaultCatalog(), logger)
}

func TestEvaluate_SimpleComparison(t *testing.T) {
	e := testEvaluator()

	if !e.Evaluate("error_rate > 5", map[string]any{"error_rate": 10.0}) {
		t.Error("error_rate > 5 with 10 should be true")
	}
	if e.Evaluate("error_rate > 5", map[string]any{"error_rate": 3.0}) {
		t.Error("error_rate > 5 with 3 should be false")
	}
}

func TestEvaluate_Operators(t *testing.T) {
	e := testEvaluator()
	vars := map[string]any{"queue_size": 100.0}

	tests := []struct {
		cond string
		want bool
	}{
		{"queue_size > 99", true},
		{"queue_size > 100", false},
		{"queue_size >= 100", true},
		{"queue_size < 101", true},
		{"queue_size < 100", false},
		{"queue_size <= 100", true},
		{"queue_size = 100", true},
		{"queue_size != 100", false},
		{"queue_size != 99", true},
	}

	for _, tt := range tests {
		if got := e.Evaluate(tt.cond, vars); got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.cond, got, tt.want)
		}
	}
}

func TestEvaluate_AndMatchesLogicalAnd(t *testing.T) {
	e := testEvaluator()

	// First comparison already fails; result must be false regardless of
	// how the second leaf would evaluate.
	vars := map[string]any{"error_rate": 0.0, "queue_size": 100.0}
	if e.Evaluate("error_rate > 1 AND queue_size > 1", vars) {
		t.Error("AND with a false leaf should be false")
	}
	if !e.Evaluate("error_rate >= 0 AND queue_size > 1", vars) {
		t.Error("AND with all true leaves should be true")
	}
}

func TestEvaluate_Or(t *testing.T) {
	e := testEvaluator()
	vars := map[string]any{"cpu_usage": 95.0, "memory_usage": 20.0}

	if !e.Evaluate("cpu_usage > 90 OR memory_usage > 90", vars) {
		t.Error("OR with one true leaf should be true")
	}
	if e.Evaluate("cpu_usage > 99 OR memory_usage > 90", vars) {
		t.Error("OR with no true leaves should be false")
	}
}

func TestEvaluate_TreeEquivalentToSimple(t *testing.T) {
	e := testEvaluator()

	simple := "error_rate > 5 AND documents_today < 50"
	tree := `{"AND":[{"variable":"error_rate","operator":">","value":5},{"variable":"documents_today","operator":"<","value":50}]}`

	cases := []map[string]any{
		{"error_rate": 10.0, "documents_today": 10.0},
		{"error_rate": 10.0, "documents_today": 90.0},
		{"error_rate": 1.0, "documents_today": 10.0},
		{"error_rate": 1.0, "documents_today": 90.0},
	}

	for _, vars := range cases {
		if s, tr := e.Evaluate(simple, vars), e.Evaluate(tree, vars); s != tr {
			t.Errorf("simple = %v, tree = %v for %v", s, tr, vars)
		}
	}
}

func TestEvaluate_MissingVariableIsFalse(t *testing.T) {
	e := testEvaluator()

	if e.Evaluate("error_rate > 5", map[string]any{}) {
		t.Error("missing variable must evaluate false, not true")
	}
}

func TestEvaluate_IncoercibleValueIsFalse(t *testing.T) {
	e := testEvaluator()

	// Snapshot value is numeric, authored value is not.
	if e.Evaluate("error_rate > banana", map[string]any{"error_rate": 10.0}) {
		t.Error("incoercible authored value must evaluate false")
	}
}

func TestEvaluate_MalformedConditionIsFalse(t *testing.T) {
	e := testEvaluator()

	if e.Evaluate("error_rate", map[string]any{"error_rate": 10.0}) {
		t.Error("malformed condition must evaluate false")
	}
	if e.Evaluate(`{"AND": [`, map[string]any{"error_rate": 10.0}) {
		t.Error("malformed tree must evaluate false")
	}
}

func TestEvaluate_BoolSupportsEqualityOnly(t *testing.T) {
	e := testEvaluator()
	vars := map[string]any{"active_users": true}

	if !e.Evaluate("active_users = true", vars) {
		t.Error("bool equality should hold")
	}
	if !e.Evaluate("active_users != false", vars) {
		t.Error("bool inequality should hold")
	}
	if e.Evaluate("active_users > true", vars) {
		t.Error("ordering on booleans must be false")
	}
}

func TestEvaluate_DateComparison(t *testing.T) {
	e := testEvaluator()
	vars := map[string]any{"current_date": time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)}

	if !e.Evaluate("current_date >= 2026-01-01", vars) {
		t.Error("date >= earlier date should be true")
	}
	if e.Evaluate("current_date < 2026-01-01", vars) {
		t.Error("date < earlier date should be false")
	}
}

func TestEvaluate_StringComparison(t *testing.T) {
	e := testEvaluator()
	vars := map[string]any{"current_date": "2026-08"}

	// Snapshot strings compare ordinally.
	if !e.Evaluate("current_date > 2026-07", vars) {
		t.Error("ordinal string compare should be true")
	}
}

func TestEvaluate_IntSnapshotValues(t *testing.T) {
	e := testEvaluator()

	if !e.Evaluate("db_connections > 5", map[string]any{"db_connections": 10}) {
		t.Error("int snapshot value should compare numerically")
	}
	if !e.Evaluate("documents_today < 50", map[string]any{"documents_today": int64(10)}) {
		t.Error("int64 snapshot value should compare numerically")
	}
}

func TestValidate_UnknownVariable(t *testing.T) {
	e := testEvaluator()

	err := e.Validate("warp_factor > 9")
	if err == nil {
		t.Fatal("expected validation error for unknown variable")
	}
	if !strings.Contains(err.Error(), "warp_factor") {
		t.Errorf("error %q should name the unknown variable", err)
	}
}

func TestValidate_KnownCondition(t *testing.T) {
	e := testEvaluator()

	if err := e.Validate("documents_today < 50"); err != nil {
		t.Errorf("Validate error: %v", err)
	}
	if err := e.Validate(`{"OR":[{"variable":"cpu_usage","operator":">","value":90},{"variable":"memory_usage","operator":">","value":90}]}`); err != nil {
		t.Errorf("Validate tree error: %v", err)
	}
}

func TestValidate_Empty(t *testing.T) {
	e := testEvaluator()

	if err := e.Validate(""); err == nil {
		t.Error("empty condition must not validate")
	}
}

func TestValidate_TreeUnknownVariable(t *testing.T) {
	e := testEvaluator()

	err := e.Validate(`{"AND":[{"variable":"warp_factor","operator":">","value":9}]}`)
	if err == nil || !strings.Contains(err.Error(), "warp_factor") {
		t.Errorf("err = %v, want unknown variable naming warp_factor", err)
	}
}

func TestTemplates_AllValidate(t *testing.T) {
	e := testEvaluator()

	for _, tpl := range Templates() {
		if err := e.Validate(tpl.Condition); err != nil {
			t.Errorf("template %q does not validate: %v", tpl.Name, err)
		}
	}
}

func TestReferenced(t *testing.T) {
	e := testEvaluator()

	vars := e.Referenced("error_rate > 5 AND documents_today < 50")
	if len(vars) != 2 || vars[0] != "error_rate" || vars[1] != "documents_today" {
		t.Errorf("Referenced = %v, want [error_rate documents_today]", vars)
	}
	if got := e.Referenced("not a condition"); got != nil {
		t.Errorf("Referenced on malformed condition = %v, want nil", got)
	}
}
