package config

import (
	"context"
	"testing"
	"time"

	"github.com/jshint-go/jshint/pkg/engine"
)

func TestStarlarkEvaluator_Evaluate(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)
	ctx := context.Background()

	defaults := NewMapping()
	defaults.Set("indent", Int(2))
	defaults.Set("predef", Sequence(String("$")))

	tests := []struct {
		name    string
		script  string
		want    string
		wantErr bool
	}{
		{
			name:   "globals become sorted keys",
			script: "strict = True\nbitwise = False\n",
			want:   "bitwise=false&strict=true",
		},
		{
			name: "private and callable globals are skipped",
			script: `
_hidden = 1
def helper():
    return 3
maxlen = helper() * 40
`,
			want: "maxlen=120",
		},
		{
			name:   "defaults are visible",
			script: "indent = defaults[\"indent\"] + 2\npredef = defaults[\"predef\"] + [\"angular\"]\n",
			want:   `indent=4&predef=["$","angular"]`,
		},
		{
			name:   "dicts keep insertion order",
			script: "globals = {\"z\": True, \"a\": False}\n",
			want:   `globals=({"z": true,"a": false})`,
		},
		{
			name:   "struct becomes mapping",
			script: "globals = struct(define = False)\n",
			want:   `globals=({"define": false})`,
		},
		{
			name:   "tuples and floats",
			script: "ratio = 0.5\nnames = (\"a\", None)\n",
			want:   `names=["a",null]&ratio=0.5`,
		},
		{
			name:    "defaults are frozen",
			script:  "defaults[\"indent\"] = 8\n",
			wantErr: true,
		},
		{
			name:    "syntax error",
			script:  "strict = \n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := evaluator.Evaluate(ctx, "test.star", tt.script, defaults)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := Serialize(m); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStarlarkEvaluator_Env(t *testing.T) {
	t.Setenv("JSHINT_TEST_PREDEF", "jQuery")

	evaluator := NewStarlarkEvaluator(0)
	m, err := evaluator.Evaluate(context.Background(), "env.star", `
predef = env("JSHINT_TEST_PREDEF")
missing = env("JSHINT_TEST_MISSING_VAR", "fallback")
`, NewMapping())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `missing="fallback"&predef="jQuery"`
	if got := Serialize(m); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestStarlarkEvaluator_Timeout(t *testing.T) {
	evaluator := NewStarlarkEvaluator(100 * time.Millisecond)

	script := `
def spin():
    total = 0
    for i in range(100000000):
        total = total + i
    return total

output = spin()
`

	if _, err := evaluator.Evaluate(context.Background(), "slow.star", script, NewMapping()); err == nil {
		t.Error("expected timeout error")
	}
}

func TestStarlarkEvaluator_UnsupportedValue(t *testing.T) {
	evaluator := NewStarlarkEvaluator(0)

	tests := []struct {
		name    string
		script  string
		wantKey string
	}{
		{name: "builtin in dict", script: "globals = {\"f\": len}\n", wantKey: "globals.f"},
		{name: "function in list", script: "def f():\n    pass\npredef = [f]\n", wantKey: "predef[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.Evaluate(context.Background(), "bad.star", tt.script, NewMapping())
			if !engine.IsUnsupportedValueKind(err) {
				t.Fatalf("expected unsupported value kind, got %v", err)
			}
			if e, ok := err.(*engine.Error); ok && e.Key != tt.wantKey {
				t.Errorf("expected key %q, got %q", tt.wantKey, e.Key)
			}
		})
	}
}
