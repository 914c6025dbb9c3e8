package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
extraction:
  occlusion_filter: false
  include_attributes: [placeholder, href]
  viewport_tolerance: 250
  occlusion_opacity: 0.9
remote_url: ws://localhost:9222
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.RemoteURL != "ws://localhost:9222" {
		t.Fatalf("RemoteURL = %q", c.RemoteURL)
	}

	opts := c.Options()
	if opts.OcclusionFilter {
		t.Fatal("occlusion_filter: false not honored")
	}
	if len(opts.IncludeAttributes) != 2 || opts.IncludeAttributes[0] != "placeholder" {
		t.Fatalf("IncludeAttributes = %v", opts.IncludeAttributes)
	}
	if opts.ViewportTolerance != 250 || opts.OcclusionOpacity != 0.9 {
		t.Fatalf("tuning = %v / %v", opts.ViewportTolerance, opts.OcclusionOpacity)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("CDP_ENDPOINT", "ws://browser:9222")
	path := writeConfig(t, "remote_url: ${CDP_ENDPOINT}\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.RemoteURL != "ws://browser:9222" {
		t.Fatalf("RemoteURL = %q", c.RemoteURL)
	}
}

func TestDefaults(t *testing.T) {
	opts := Config{}.Options()
	if !opts.OcclusionFilter {
		t.Fatal("occlusion filter defaults on")
	}
	if len(opts.IncludeAttributes) != 0 {
		t.Fatal("attribute list defaults to empty (serializer supplies its own)")
	}
	if opts.ViewportTolerance != 0 || opts.OcclusionOpacity != 0 {
		t.Fatal("zero tuning values pass through for the pipeline defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file must error")
	}
	path := writeConfig(t, "extraction: [not, a, map]\n")
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml must error")
	}
}
