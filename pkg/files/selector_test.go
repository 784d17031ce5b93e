package files

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/engine"
)

// tree creates files under a temp dir.
func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestSelect(t *testing.T) {
	dir := tree(t, map[string]string{
		"a.js":                "var a;",
		"b.js":                "var b;",
		"empty.js":            "",
		"lib/c.js":            "var c;",
		"lib/vendor/d.js":     "var d;",
		"lib/vendor/e.min.js": "var e;",
		"lib/readme.txt":      "text",
	})
	p := func(name string) string { return filepath.Join(dir, filepath.FromSlash(name)) }

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name:    "duplicates removed and exclusions applied",
			include: []string{p("a.js"), p("b.js"), p("a.js")},
			exclude: []string{p("b.js")},
			want:    []string{p("a.js")},
		},
		{
			name:    "include order preserved",
			include: []string{p("b.js"), p("a.js")},
			want:    []string{p("b.js"), p("a.js")},
		},
		{
			name:    "zero-byte files dropped",
			include: []string{p("*.js")},
			want:    []string{p("a.js"), p("b.js")},
		},
		{
			name:    "recursive glob",
			include: []string{p("lib/**/*.js")},
			exclude: []string{p("lib/vendor/*.min.js")},
			want:    []string{p("lib/c.js"), p("lib/vendor/d.js")},
		},
		{
			name:    "overlapping patterns keep first occurrence",
			include: []string{p("lib/vendor/d.js"), p("lib/*.js"), p("lib/vendor/*.js")},
			exclude: []string{p("lib/vendor/e.min.js")},
			want:    []string{p("lib/vendor/d.js"), p("lib/c.js")},
		},
		{
			name:    "no matches",
			include: []string{p("missing/**/*.js")},
			want:    []string{},
		},
		{
			name: "no patterns",
			want: []string{},
		},
		{
			name:    "directories dropped",
			include: []string{p("lib"), p("lib/*")},
			want:    []string{p("lib/c.js"), p("lib/readme.txt")},
		},
	}

	s := NewSelector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Select(tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Select() = %v\nwant       %v", got, tt.want)
			}
		})
	}
}

func TestSelectSymlinkDedup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	dir := tree(t, map[string]string{"src/app.js": "var app;"})
	link := filepath.Join(dir, "alias.js")
	if err := os.Symlink(filepath.Join(dir, "src", "app.js"), link); err != nil {
		t.Fatalf("failed to symlink: %v", err)
	}

	got, err := NewSelector().Select(
		[]string{filepath.Join(dir, "src", "app.js"), link},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected one file, got %v", got)
	}

	got, err = NewSelector().Select(
		[]string{filepath.Join(dir, "src", "app.js")},
		[]string{link},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected exclusion through symlink, got %v", got)
	}
}

func TestSelectBadPattern(t *testing.T) {
	if _, err := NewSelector().Select([]string{"[unclosed"}, nil); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestPatternsFrom(t *testing.T) {
	tests := []struct {
		name     string
		explicit []string
		cfg      config.Value
		want     []string
	}{
		{
			name:     "explicit wins",
			explicit: []string{"src/*.js"},
			cfg:      config.String("lib/*.js"),
			want:     []string{"src/*.js"},
		},
		{
			name:     "explicit empty still wins",
			explicit: []string{},
			cfg:      config.String("lib/*.js"),
			want:     []string{},
		},
		{
			name: "config string",
			cfg:  config.String("lib/*.js"),
			want: []string{"lib/*.js"},
		},
		{
			name: "config sequence",
			cfg:  config.Sequence(config.String("a/*.js"), config.String("b/*.js")),
			want: []string{"a/*.js", "b/*.js"},
		},
		{
			name: "absent",
			cfg:  config.Null(),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PatternsFrom(config.PathsKey, tt.explicit, tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PatternsFrom() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPatternsFromUnsupported(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Value
	}{
		{name: "bool", cfg: config.Bool(true)},
		{name: "number in sequence", cfg: config.Sequence(config.String("a"), config.Int(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PatternsFrom(config.ExcludePathsKey, nil, tt.cfg)
			if !engine.IsUnsupportedValueKind(err) {
				t.Errorf("expected unsupported value kind, got %v", err)
			}
		})
	}
}
