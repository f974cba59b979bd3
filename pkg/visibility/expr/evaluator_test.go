package expr

import (
	"testing"

	"github.com/goliatone/go-declaration/pkg/visibility"
)

func TestEval(t *testing.T) {
	values := map[string]string{
		"status":   "resident",
		"children": "2",
		"flag":     "1",
		"off":      "0",
		"amount":   "10,5",
	}
	ctx := visibility.Context{
		Lookup: func(code string) (string, bool) {
			v, ok := values[code]
			return v, ok && v != ""
		},
		Extras: map[string]any{"resident": true, "year": 2024},
	}

	tests := []struct {
		rule string
		want bool
	}{
		{"", true},
		{"flag", true},
		{"off", false},
		{"missing", false},
		{`status == "resident"`, true},
		{`status != 'resident'`, false},
		{"status == resident", true},
		{"children == 2", true},
		{"children != 3", true},
		{"amount == 10.5", true},
		{`flag == "1" && !off`, true},
		{"(missing || flag) && children == 2", true},
		{"!(flag)", false},
		{"extras.resident", true},
		{"extras.resident == false", false},
		{"extras.year == 2024", true},
		{"extras.unknown", false},
		{"missing == true", false},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			got, err := e.Eval(tt.rule, ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Eval(%q) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	for _, rule := range []string{
		"a = 1",
		"a & b",
		`a == "open`,
		"(a",
		"a ==",
		"a b",
		"== 1",
		"a == &&",
	} {
		t.Run(rule, func(t *testing.T) {
			if _, err := New().Eval(rule, visibility.Context{}); err == nil {
				t.Fatalf("expected an error for %q", rule)
			}
		})
	}
}

func TestEval_NilLookup(t *testing.T) {
	got, err := New().Eval(`x != "y"`, visibility.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("missing values compare as empty strings")
	}
}
