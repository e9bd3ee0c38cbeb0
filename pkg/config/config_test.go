package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
schema: v1.0.0
reuse_internal_nodes: true
layout_threads: 0
recycling_mode: no_view_reuse
extensions:
  tracing: true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := Default()
	want.ReuseInternalNodes = true
	want.LayoutThreads = 0
	want.RecyclingMode = RecyclingNoViewReuse
	want.Extensions.Tracing = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad schema", "schema: one", "invalid schema"},
		{"future major", "schema: v2.0.0", "unsupported schema"},
		{"future minor", "schema: v1.9.0", "newer than supported"},
		{"negative threads", "layout_threads: -1", "layout_threads"},
		{"negative pool", "default_pool_size: -3", "default_pool_size"},
		{"recycling", "recycling_mode: sometimes", "recycling_mode"},
		{"syntax", "schema: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.yaml)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional on empty dir: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("incremental_mount: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.IncrementalMount {
		t.Error("IncrementalMount should be false")
	}
}

func TestRecyclingModeHelpers(t *testing.T) {
	cfg := Default()
	if !cfg.UsesPools() || !cfg.ReusesPooledContent() {
		t.Error("default mode should use and reuse pools")
	}
	cfg.RecyclingMode = RecyclingNoViewReuse
	if !cfg.UsesPools() || cfg.ReusesPooledContent() {
		t.Error("no_view_reuse should use but not reuse pools")
	}
	cfg.RecyclingMode = RecyclingNoPooling
	if cfg.UsesPools() {
		t.Error("no_pooling should not use pools")
	}
}
