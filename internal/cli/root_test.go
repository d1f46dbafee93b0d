package cli

import (
	"reflect"
	"runtime/debug"
	"testing"

	"github.com/spf13/pflag"
)

func TestSplitOverrides(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantTokens []string
		wantAlias  string
		wantCache  string
	}{
		{
			name:       "no overrides",
			args:       []string{"con", "dev"},
			wantTokens: []string{"con", "dev"},
		},
		{
			name:       "config before tokens",
			args:       []string{"--config", "/tmp/a.yaml", "con", "dev"},
			wantTokens: []string{"con", "dev"},
			wantAlias:  "/tmp/a.yaml",
		},
		{
			name:       "cache interleaved",
			args:       []string{"con", "--cache", "/tmp/c.json", "dev"},
			wantTokens: []string{"con", "dev"},
			wantCache:  "/tmp/c.json",
		},
		{
			name:       "equals form",
			args:       []string{"--config=/tmp/a.yaml", "--cache=/tmp/c.json"},
			wantTokens: nil,
			wantAlias:  "/tmp/a.yaml",
			wantCache:  "/tmp/c.json",
		},
		{
			name:       "help token passes through",
			args:       []string{"con", "-h"},
			wantTokens: []string{"con", "-h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, alias, cache, err := splitOverrides(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(tokens, tt.wantTokens) {
				t.Errorf("tokens = %v, want %v", tokens, tt.wantTokens)
			}
			if alias != tt.wantAlias {
				t.Errorf("alias override = %q, want %q", alias, tt.wantAlias)
			}
			if cache != tt.wantCache {
				t.Errorf("cache override = %q, want %q", cache, tt.wantCache)
			}
		})
	}
}

func TestSplitOverridesMissingValue(t *testing.T) {
	if _, _, _, err := splitOverrides([]string{"--config"}); err == nil {
		t.Fatal("expected error for dangling --config")
	}
	if _, _, _, err := splitOverrides([]string{"con", "--cache"}); err == nil {
		t.Fatal("expected error for dangling --cache")
	}
}

func TestOverrideFlagsRegistered(t *testing.T) {
	found := make(map[string]struct{})
	rootCmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		found[flag.Name] = struct{}{}
	})
	for _, name := range []string{"config", "cache"} {
		if _, ok := found[name]; !ok {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
}

func TestCurrentVersionInfoFallback(t *testing.T) {
	orig := readBuildInfo
	defer func() { readBuildInfo = orig }()
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }

	info := currentVersionInfo()
	if info.Version != "devel" {
		t.Errorf("version = %q, want devel", info.Version)
	}
	if info.ModulePath != defaultModulePath {
		t.Errorf("module path = %q", info.ModulePath)
	}
}

func TestCurrentVersionInfoFromBuildInfo(t *testing.T) {
	orig := readBuildInfo
	defer func() { readBuildInfo = orig }()
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Path: "example.com/fork", Version: "v1.2.3"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, true
	}

	info := currentVersionInfo()
	if info.Version != "v1.2.3" {
		t.Errorf("version = %q", info.Version)
	}
	if info.ModulePath != "example.com/fork" {
		t.Errorf("module path = %q", info.ModulePath)
	}
	if info.Commit != "abc123" || !info.Modified {
		t.Errorf("vcs settings not applied: %+v", info)
	}
}
