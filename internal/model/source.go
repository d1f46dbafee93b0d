package model

import (
	"fmt"
	"sort"
)

// LocalsSource is the reserved source name that addresses the persistent
// locals store instead of a configured data source.
const LocalsSource = "locals"

// Row is one record of a resolved data source.
type Row map[string]any

// Field returns the stringified value of a row field. JSON and YAML
// decode scalars into assorted Go types; matching and substitution both
// compare against the user's typed token, so everything is rendered
// through a single formatting rule.
func (r Row) Field(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// FormatValue renders a row value the way it appears on the command line.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers arrive as float64; render integers without the
		// trailing ".0" the %v verb would produce via %g anyway.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// StaticSource is a named data source with a fixed row sequence.
type StaticSource struct {
	Name string
	Rows []Row
}

// DynamicSource is a named data source whose rows are produced by
// running a shell command and projecting its JSON output through a
// field mapping.
type DynamicSource struct {
	Name string

	// Command is the shell command template. It may reference other
	// sources with $${other.key}, which are resolved recursively.
	Command string

	// Mapping maps internal row keys to keys in the command's JSON
	// output. Rows that map to nothing are dropped.
	Mapping map[string]string

	// Priority is an advisory ordering hint for eager resolution.
	Priority int

	// Timeout bounds the command execution, in seconds.
	Timeout int

	// CacheTTL is the per-source cache validity window, in seconds.
	CacheTTL int
}

// Catalog is the full read-only command/source model for one process.
type Catalog struct {
	Statics  map[string]*StaticSource
	Dynamics map[string]*DynamicSource
	Commands []*Node
}

// NewCatalog returns an empty catalog with initialized maps.
func NewCatalog() *Catalog {
	return &Catalog{
		Statics:  make(map[string]*StaticSource),
		Dynamics: make(map[string]*DynamicSource),
	}
}

// DynamicsByPriority returns the dynamic sources in ascending priority
// order, ties broken by name for stable iteration.
func (c *Catalog) DynamicsByPriority() []*DynamicSource {
	out := make([]*DynamicSource, 0, len(c.Dynamics))
	for _, d := range c.Dynamics {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// StaticNames returns the static source names in sorted order.
func (c *Catalog) StaticNames() []string {
	names := make([]string, 0, len(c.Statics))
	for name := range c.Statics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DynamicNames returns the dynamic source names in sorted order.
func (c *Catalog) DynamicNames() []string {
	names := make([]string, 0, len(c.Dynamics))
	for name := range c.Dynamics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
