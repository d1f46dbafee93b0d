package config

import (
	"os"
	"path/filepath"
	"strings"
)

// aliasFileCandidates lists alias file locations in discovery order:
// project-local dotfile, project-local plain, then the home variants.
var aliasFileCandidates = []string{".dya.yaml", "dya.yaml", "~/.dya.yaml", "~/dya.yaml"}

var cacheFileCandidates = []string{".dya.json", "dya.json", "~/.dya.json", "~/dya.json"}

// DiscoverAliasPath returns the alias definition file to use. An
// explicit override wins; otherwise the first existing candidate is
// picked, falling back to ~/.dya.yaml.
func DiscoverAliasPath(override string) string {
	return discover(override, aliasFileCandidates, "~/.dya.yaml")
}

// DiscoverCachePath returns the cache file to use, with the same
// precedence as DiscoverAliasPath.
func DiscoverCachePath(override string) string {
	return discover(override, cacheFileCandidates, "~/.dya.json")
}

func discover(override string, candidates []string, fallback string) string {
	if strings.TrimSpace(override) != "" {
		return ExpandHome(override)
	}
	for _, candidate := range candidates {
		path := ExpandHome(candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ExpandHome(fallback)
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}
