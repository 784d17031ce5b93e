package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng
}

func TestNewEngine(t *testing.T) {
	eng := newTestEngine(t)

	policies := eng.ListPolicies()
	want := []string{"empty-file-list", "no-evil", "predef-identifiers"}
	if len(policies) != len(want) {
		t.Fatalf("expected %d built-in policies, got %d", len(want), len(policies))
	}
	for i, name := range want {
		if policies[i].Name != name {
			t.Errorf("policy %d: expected %s, got %s", i, name, policies[i].Name)
		}
	}
}

func TestEvaluateBuiltins(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name         string
		config       map[string]any
		files        []string
		wantPolicies []string
	}{
		{
			name:   "clean",
			config: map[string]any{"evil": false, "predef": "$,angular"},
			files:  []string{"app.js"},
		},
		{
			name:         "evil enabled",
			config:       map[string]any{"evil": true},
			files:        []string{"app.js"},
			wantPolicies: []string{"no-evil"},
		},
		{
			name:         "no files",
			config:       map[string]any{},
			wantPolicies: []string{"empty-file-list"},
		},
		{
			name:         "empty predef entry",
			config:       map[string]any{"predef": "a,,b"},
			files:        []string{"app.js"},
			wantPolicies: []string{"predef-identifiers"},
		},
		{
			name:         "predef with space",
			config:       map[string]any{"predef": "a, b"},
			files:        []string{"app.js"},
			wantPolicies: []string{"predef-identifiers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eng.Evaluate(context.Background(), &Input{Config: tt.config, Files: tt.files})
			if err != nil {
				t.Fatalf("evaluation failed: %v", err)
			}
			if !result.Allowed {
				t.Errorf("built-in policies must not block, got %+v", result.Violations)
			}
			if len(result.Errors) > 0 {
				t.Errorf("unexpected evaluation errors: %v", result.Errors)
			}

			got := map[string]bool{}
			for _, w := range result.Warnings {
				got[w.Policy] = true
				if w.Severity != SeverityWarning {
					t.Errorf("expected warning severity, got %s", w.Severity)
				}
			}
			if len(got) != len(tt.wantPolicies) {
				t.Errorf("expected warnings from %v, got %+v", tt.wantPolicies, result.Warnings)
			}
			for _, p := range tt.wantPolicies {
				if !got[p] {
					t.Errorf("expected warning from %s", p)
				}
			}
		})
	}
}

func TestEvaluateBlockingPolicy(t *testing.T) {
	dir := t.TempDir()
	rego := `# Strict mode is required.
# severity: error
package custom.policies.strict

import rego.v1

deny contains violation if {
	not input.config.strict
	violation := {"message": "strict mode is required", "key": "strict"}
}
`
	if err := os.WriteFile(filepath.Join(dir, "require-strict.rego"), []byte(rego), 0o644); err != nil {
		t.Fatalf("failed to write policy: %v", err)
	}

	eng := newTestEngine(t)
	if err := eng.LoadPolicies(context.Background(), []string{dir}); err != nil {
		t.Fatalf("failed to load policies: %v", err)
	}

	p, err := eng.GetPolicy("require-strict")
	if err != nil {
		t.Fatalf("policy not loaded: %v", err)
	}
	if p.Severity != SeverityError || p.Description != "Strict mode is required." {
		t.Errorf("unexpected header parse: %+v", p)
	}

	result, err := eng.Evaluate(context.Background(), &Input{
		Config: map[string]any{"strict": false},
		Files:  []string{"app.js"},
	})
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if result.Allowed {
		t.Fatal("expected run to be blocked")
	}
	if len(result.Violations) != 1 || result.Violations[0].Key != "strict" {
		t.Errorf("unexpected violations: %+v", result.Violations)
	}

	result, err = eng.Evaluate(context.Background(), &Input{
		Config: map[string]any{"strict": true},
		Files:  []string{"app.js"},
	})
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if !result.Allowed {
		t.Errorf("expected strict config to pass, got %+v", result.Violations)
	}
}

func TestDisablePolicy(t *testing.T) {
	eng := newTestEngine(t)

	if err := eng.DisablePolicy("empty-file-list"); err != nil {
		t.Fatalf("failed to disable: %v", err)
	}

	result, err := eng.Evaluate(context.Background(), &Input{})
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	for _, name := range result.EvaluatedPolicies {
		if name == "empty-file-list" {
			t.Error("disabled policy was evaluated")
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", result.Warnings)
	}

	if err := eng.EnablePolicy("empty-file-list"); err != nil {
		t.Fatalf("failed to enable: %v", err)
	}
	if err := eng.DisablePolicy("missing"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestLoadPoliciesCompileError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.rego"), []byte("package broken\n\ndeny contains"), 0o644); err != nil {
		t.Fatalf("failed to write policy: %v", err)
	}

	eng := newTestEngine(t)
	if err := eng.LoadPolicies(context.Background(), []string{filepath.Join(dir, "broken.rego")}); err == nil {
		t.Error("expected compile error")
	}
}
