package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
history_size = 100
verbose = true
shell = false
cache_file = "~/custom-cache.json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HistorySize != 100 {
		t.Errorf("history_size = %d, want 100", cfg.HistorySize)
	}
	if !cfg.Verbose {
		t.Error("verbose not loaded")
	}
	if cfg.ShellEnabled() {
		t.Error("shell = false not honored")
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should default to enabled")
	}
	if cfg.CacheFile != "~/custom-cache.json" {
		t.Errorf("cache_file = %q", cfg.CacheFile)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("history_size = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if !cfg.ShellEnabled() {
		t.Error("shell should default to enabled")
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should default to enabled")
	}
	if cfg.EffectiveHistorySize() != DefaultHistorySize {
		t.Errorf("history size = %d, want %d", cfg.EffectiveHistorySize(), DefaultHistorySize)
	}
}

func TestDiscoverPrefersOverride(t *testing.T) {
	got := DiscoverAliasPath("/tmp/explicit.yaml")
	if got != "/tmp/explicit.yaml" {
		t.Errorf("override ignored: %q", got)
	}
}

func TestDiscoverFindsLocalFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".dya.yaml"), []byte("---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })

	if got := DiscoverAliasPath(""); got != ".dya.yaml" {
		t.Errorf("discovered %q, want .dya.yaml", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandHome("~/x.yaml"); got != filepath.Join(home, "x.yaml") {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs/x.yaml"); got != "/abs/x.yaml" {
		t.Errorf("absolute path changed: %q", got)
	}
}
