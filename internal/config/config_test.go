package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingDefaultFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("explicit missing file must error")
	}

	// empty path with no file in cwd falls back to defaults; emulate by
	// loading from a directory without the default file
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	content := `
margin_ms: 1000
strategy: Text
provider: openai
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.MarginMS != 1000 {
		t.Errorf("margin_ms = %d, want 1000", cfg.MarginMS)
	}
	if cfg.Strategy != "text" {
		t.Errorf("strategy = %q, want text (normalized)", cfg.Strategy)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q, want openai", cfg.Provider)
	}

	// untouched fields keep their defaults
	if cfg.WordCount != 20 {
		t.Errorf("word_count = %d, want default 20", cfg.WordCount)
	}
	if cfg.ClipDir != "clips" {
		t.Errorf("clip_dir = %q, want default clips", cfg.ClipDir)
	}
}

func TestLoadNormalizesNonpositiveValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	content := `
margin_ms: -10
word_count: 0
concurrency: -1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MarginMS != 500 {
		t.Errorf("margin_ms = %d, want 500", cfg.MarginMS)
	}
	if cfg.WordCount != 20 {
		t.Errorf("word_count = %d, want 20", cfg.WordCount)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Concurrency)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	if err := os.WriteFile(path, []byte("strategy: fuzzy\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	if err := os.WriteFile(path, []byte("strategy: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
