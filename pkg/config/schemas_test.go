package config

import (
	"strings"
	"testing"
)

func TestSchemaRegistry_BuiltInSchemas(t *testing.T) {
	sr := NewSchemaRegistry()

	names := sr.ListSchemas()
	if len(names) != 1 || names[0] != OptionsSchema {
		t.Errorf("expected [%s], got %v", OptionsSchema, names)
	}
}

func TestSchemaRegistry_CheckOptions(t *testing.T) {
	sr := NewSchemaRegistry()

	tests := []struct {
		name       string
		doc        string
		wantIssues bool
	}{
		{
			name: "well-formed options",
			doc: `
bitwise: true
maxlen: 120
latedef: nofunc
predef: "$,angular"
globals:
  define: false
`,
		},
		{
			name: "unknown keys accepted",
			doc:  "esnext: true\nfuturehostile: true\n",
		},
		{
			name:       "wrong type",
			doc:        "bitwise: \"yes\"\n",
			wantIssues: true,
		},
		{
			name:       "limit out of range",
			doc:        "maxlen: 0\n",
			wantIssues: true,
		},
		{
			name:       "globals must be booleans",
			doc:        "globals:\n  define: 1\n",
			wantIssues: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseDocument([]byte(tt.doc))
			if err != nil {
				t.Fatalf("failed to parse: %v", err)
			}

			issues, err := sr.Check(OptionsSchema, m)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantIssues && len(issues) == 0 {
				t.Error("expected issues, got none")
			}
			if !tt.wantIssues && len(issues) > 0 {
				t.Errorf("expected no issues, got %v", issues)
			}
		})
	}
}

func TestSchemaRegistry_CheckBuiltinDefaults(t *testing.T) {
	m, err := ParseDocument(defaultConfig)
	if err != nil {
		t.Fatalf("failed to parse built-in defaults: %v", err)
	}
	if err := NormalizePredef(m); err != nil {
		t.Fatalf("failed to normalize: %v", err)
	}
	m.Delete(PathsKey)
	m.Delete(ExcludePathsKey)

	issues, err := NewSchemaRegistry().Check(OptionsSchema, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) > 0 {
		t.Errorf("built-in defaults do not satisfy the options schema: %v", issues)
	}
}

func TestSchemaRegistry_RegisterSchema(t *testing.T) {
	sr := NewSchemaRegistry()

	err := sr.RegisterSchema("team", "#Team", `
#Team: {
	strict: true
	...
}
`)
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	m := NewMapping()
	m.Set("strict", Bool(false))

	issues, err := sr.Check("team", m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) == 0 {
		t.Error("expected strict=false to violate the team schema")
	}

	if got := strings.Join(sr.ListSchemas(), ","); got != "options,team" {
		t.Errorf("unexpected schema list %s", got)
	}
}

func TestSchemaRegistry_InvalidSchema(t *testing.T) {
	sr := NewSchemaRegistry()

	if err := sr.RegisterSchema("broken", "#Broken", "#Broken: {"); err == nil {
		t.Error("expected compile error")
	}
	if err := sr.RegisterSchema("missing", "#Missing", "#Other: {}"); err == nil {
		t.Error("expected missing definition error")
	}
	if _, err := sr.Check("absent", NewMapping()); err == nil {
		t.Error("expected error for unknown schema")
	}
}
