package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jshint-go/jshint/pkg/engine"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestResolveMergePrecedence(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", `
bitwise: true
indent: 2
globals:
  define: false
  require: false
`)
	user := writeFile(t, dir, "user.json", `{"indent": 4, "globals": {"angular": true}, "node": true}`)

	res, err := NewStore().Resolve(context.Background(), def, user)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	got := Serialize(res.Config)
	want := `bitwise=true&indent=4&globals=({"angular": true})&node=true`
	if got != want {
		t.Errorf("resolved = %s\nwant       %s", got, want)
	}
}

func TestResolveMissingUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", "strict: true\n")

	res, err := NewStore().Resolve(context.Background(), def, filepath.Join(dir, "absent.yml"))
	if err != nil {
		t.Fatalf("missing user config must be tolerated: %v", err)
	}
	if got := Serialize(res.Config); got != "strict=true" {
		t.Errorf("expected defaults only, got %s", got)
	}
}

func TestResolveMissingDefaultConfig(t *testing.T) {
	_, err := NewStore().Resolve(context.Background(), filepath.Join(t.TempDir(), "absent.yml"), "")
	if err == nil {
		t.Fatal("expected error for missing default config")
	}
	if !errorsIsConfigLoad(err) {
		t.Errorf("expected config load error, got %v", err)
	}
}

func TestResolveMalformedUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", "strict: true\n")
	user := writeFile(t, dir, "user.yml", "strict: [unclosed\n")

	if _, err := NewStore().Resolve(context.Background(), def, user); err == nil {
		t.Fatal("expected error for malformed user config")
	}
}

func TestResolveBuiltinDefaults(t *testing.T) {
	res, err := NewStore().Resolve(context.Background(), "", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if _, ok := res.Config.Get(PathsKey); ok {
		t.Error("paths must be stripped")
	}
	if _, ok := res.Config.Get(ExcludePathsKey); ok {
		t.Error("exclude_paths must be stripped")
	}
	if res.Paths.Kind() != KindSequence {
		t.Errorf("expected default paths sequence, got %s", res.Paths.Kind())
	}

	predef, ok := res.Config.Get(PredefKey)
	if !ok {
		t.Fatal("expected predef in defaults")
	}
	if s, _ := predef.Str(); s != "$" {
		t.Errorf("expected predef \"$\", got %q", s)
	}
	if len(res.Layers) != 2 || res.Layers[0].Source != SourceBuiltin {
		t.Errorf("unexpected layers: %+v", res.Layers)
	}
}

func TestNormalizePredef(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{
			name:  "list of names",
			value: Sequence(String("a"), String("b"), String("c")),
			want:  "a,b,c",
		},
		{
			name:  "commas are not escaped",
			value: Sequence(String("a,b"), String("c")),
			want:  "a,b,c",
		},
		{
			name:  "nested lists are flattened",
			value: Sequence(Sequence(String("a"), String("b")), String("c")),
			want:  "a,b,c",
		},
		{
			name:  "string stays",
			value: String("x,y"),
			want:  "x,y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapping()
			m.Set(PredefKey, tt.value)
			if err := NormalizePredef(m); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			v, _ := m.Get(PredefKey)
			if s, ok := v.Str(); !ok || s != tt.want {
				t.Errorf("expected %q, got %v", tt.want, v.Interface())
			}
		})
	}
}

func TestResolvePredefSerialization(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", "predef: [\"a\", \"b\", \"c\"]\n")

	res, err := NewStore().Resolve(context.Background(), def, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := Serialize(res.Config); got != `predef="a,b,c"` {
		t.Errorf("expected predef=\"a,b,c\", got %s", got)
	}
}

func TestResolveStarlarkUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", "indent: 2\npredef: [\"$\"]\n")
	user := writeFile(t, dir, "jshint.star", `
def _extra():
    return ["angular"]

indent = defaults["indent"] * 2
predef = defaults["predef"] + _extra()
node = env("JSHINT_TEST_UNSET_VAR", False)
`)

	res, err := NewStore().Resolve(context.Background(), def, user)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	want := `indent=4&predef="$,angular"&node=false`
	if got := Serialize(res.Config); got != want {
		t.Errorf("resolved = %s, want %s", got, want)
	}
}

func TestResolveStarlarkUnsupportedValue(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", "indent: 2\n")
	user := writeFile(t, dir, "jshint.star", "globals = {\"x\": len}\n")

	_, err := NewStore().Resolve(context.Background(), def, user)
	if !engine.IsUnsupportedValueKind(err) {
		t.Fatalf("expected unsupported value kind, got %v", err)
	}
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", want: ""},
		{name: "comments only", input: "# nothing\n", want: ""},
		{name: "json", input: `{"b": 1, "a": [true, null]}`, want: "b=1&a=[true,null]"},
		{name: "anchors", input: "x: &v 3\ny: *v\n", want: "x=3&y=3"},
		{name: "top level list", input: "- a\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseDocument([]byte(tt.input))
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

func TestParseDocumentTimestamp(t *testing.T) {
	_, err := ParseDocument([]byte("since: 2012-01-01\n"))
	if !engine.IsUnsupportedValueKind(err) {
		t.Fatalf("expected unsupported value kind, got %v", err)
	}
	var e *engine.Error
	if !errors.As(err, &e) || e.Key != "since" {
		t.Errorf("error key = %+v, want since", e)
	}
}

func errorsIsConfigLoad(err error) bool {
	e, ok := err.(*engine.Error)
	return ok && e.Kind == engine.KindConfigLoad
}
