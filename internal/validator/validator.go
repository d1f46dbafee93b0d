// Package validator runs offline checks over a parsed alias file and
// produces a pass/fail checklist. It never mutates the catalog and
// never runs any source command.
package validator

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/natanmedeiros/dynalias/internal/config"
	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/ui"
	"github.com/natanmedeiros/dynalias/internal/vars"
)

// Result is one validation check outcome.
type Result struct {
	Passed  bool
	Message string
	Hint    string
}

// Report collects every check run against one alias file.
type Report struct {
	Path    string
	Results []Result
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// FailedCount returns the number of failing checks.
func (r *Report) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

func (r *Report) pass(format string, args ...any) {
	r.Results = append(r.Results, Result{Passed: true, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) fail(hint, format string, args ...any) {
	r.Results = append(r.Results, Result{Message: fmt.Sprintf(format, args...), Hint: hint})
}

// Validate runs every offline check over the alias file.
func Validate(file *config.AliasFile) *Report {
	v := &checker{
		file:    file,
		catalog: file.Catalog,
		report:  &Report{Path: file.Path},
	}
	v.checkSources()
	v.checkCommands()
	v.checkReferences()
	v.checkCycles()
	v.checkStaticIndexes()
	return v.report
}

type checker struct {
	file    *config.AliasFile
	catalog *model.Catalog
	report  *Report
}

func (v *checker) checkSources() {
	for _, name := range v.catalog.StaticNames() {
		src := v.catalog.Statics[name]
		switch {
		case name == "":
			v.report.fail("Every dict needs a name field", "dict without a name")
		case name == model.LocalsSource:
			v.report.fail("Rename the dict; 'locals' addresses the persistent local variables",
				"dict uses the reserved name %q", model.LocalsSource)
		case len(src.Rows) == 0:
			v.report.fail("Add at least one item to the data list", "dict %q has an empty data list", name)
		default:
			v.report.pass("dict %q has valid data (%d items)", name, len(src.Rows))
		}
	}

	for _, name := range v.catalog.DynamicNames() {
		src := v.catalog.Dynamics[name]
		switch {
		case name == "":
			v.report.fail("Every dynamic_dict needs a name field", "dynamic_dict without a name")
		case name == model.LocalsSource:
			v.report.fail("Rename the dynamic_dict; 'locals' addresses the persistent local variables",
				"dynamic_dict uses the reserved name %q", model.LocalsSource)
		case src.Command == "":
			v.report.fail("Add the shell command that produces the JSON data",
				"dynamic_dict %q has no command", name)
		case len(src.Mapping) == 0:
			v.report.fail("Add at least one internal_key: json_key mapping entry",
				"dynamic_dict %q has an empty mapping", name)
		default:
			v.report.pass("dynamic_dict %q has a command and mapping (%d keys)", name, len(src.Mapping))
		}
		if _, dup := v.catalog.Statics[name]; dup {
			v.report.fail("Source names must be unique across dicts and dynamic_dicts",
				"source name %q defined as both dict and dynamic_dict", name)
		}
	}
}

func (v *checker) checkCommands() {
	ok := true
	for i, cmd := range v.catalog.Commands {
		label := cmd.Name
		if label == "" {
			label = fmt.Sprintf("command #%d", i+1)
		}
		if cmd.Name == "" {
			ok = false
			v.report.fail("Every command needs a name field", "%s has no name", label)
		}
		if len(cmd.Aliases) == 0 || cmd.Aliases[0] == "" {
			ok = false
			v.report.fail("Every command needs an alias pattern", "command %q has no alias", label)
		}
		if cmd.Command == "" {
			ok = false
			v.report.fail("Every command needs a command template", "command %q has no command", label)
		}
		if !v.checkNodeShape(cmd, label) {
			ok = false
		}
	}
	if ok && len(v.catalog.Commands) > 0 {
		v.report.pass("all %d commands have name, alias, and command", len(v.catalog.Commands))
	}
}

// checkNodeShape walks a command tree checking nested nodes carry the
// required fields and that arg nodes stay flat.
func (v *checker) checkNodeShape(node *model.Node, path string) bool {
	ok := true
	for _, sub := range node.Sub {
		label := path + " > " + firstAlias(sub)
		if len(sub.Aliases) == 0 || sub.Command == "" {
			ok = false
			v.report.fail("Subcommands require alias and command fields",
				"subcommand under %q is missing alias or command", path)
		}
		if !v.checkNodeShape(sub, label) {
			ok = false
		}
	}
	for _, arg := range node.Args {
		if len(arg.Aliases) == 0 || arg.Command == "" {
			ok = false
			v.report.fail("Args require alias and command fields",
				"arg under %q is missing alias or command", path)
		}
		if len(arg.Sub) > 0 || len(arg.Args) > 0 {
			ok = false
			v.report.fail("Args are flat modifiers; use subcommands for nesting",
				"arg %q under %q cannot have sub or nested args", firstAlias(arg), path)
		}
	}
	return ok
}

func (v *checker) checkReferences() {
	known := make(map[string]bool, len(v.catalog.Statics)+len(v.catalog.Dynamics)+1)
	for name := range v.catalog.Statics {
		known[name] = true
	}
	for name := range v.catalog.Dynamics {
		known[name] = true
	}
	known[model.LocalsSource] = true

	failures := 0
	check := func(owner, text string) {
		for _, ref := range vars.ExtractAppVars(text) {
			if !known[ref.Source] {
				failures++
				v.report.fail(fmt.Sprintf("Define a dict or dynamic_dict named %q", ref.Source),
					"%s references undefined source %q", owner, ref.Source)
			}
		}
	}

	for _, name := range v.catalog.DynamicNames() {
		check(fmt.Sprintf("dynamic_dict %q", name), v.catalog.Dynamics[name].Command)
	}
	for _, cmd := range v.catalog.Commands {
		v.walkTemplates(cmd, fmt.Sprintf("command %q", cmd.Name), check)
	}

	if failures == 0 {
		v.report.pass("all source references are defined")
	}
}

func (v *checker) walkTemplates(node *model.Node, owner string, check func(owner, text string)) {
	for _, alias := range node.Aliases {
		check(owner, alias)
	}
	check(owner, node.Command)
	for _, sub := range node.Sub {
		v.walkTemplates(sub, owner, check)
	}
	for _, arg := range node.Args {
		v.walkTemplates(arg, owner, check)
	}
}

// checkCycles scans the dynamic-source dependency graph for cycles. The
// resolver's in-progress guard terminates cycles at runtime, but a
// cyclic config always resolves to empty rows, so flag it here.
func (v *checker) checkCycles() {
	graph := make(map[string][]string, len(v.catalog.Dynamics))
	for name, src := range v.catalog.Dynamics {
		var deps []string
		for _, ref := range vars.ExtractAppVars(src.Command) {
			if _, ok := v.catalog.Dynamics[ref.Source]; ok {
				deps = append(deps, ref.Source)
			}
		}
		sort.Strings(deps)
		graph[name] = deps
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(graph))
	var cycles [][]string

	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		switch state[name] {
		case visiting:
			for i, p := range path {
				if p == name {
					cycle := append(append([]string{}, path[i:]...), name)
					cycles = append(cycles, cycle)
					return
				}
			}
			return
		case done:
			return
		}
		state[name] = visiting
		for _, dep := range graph[name] {
			visit(dep, append(path, name))
		}
		state[name] = done
	}

	for _, name := range v.catalog.DynamicNames() {
		visit(name, nil)
	}

	if len(cycles) == 0 {
		v.report.pass("no circular references between dynamic_dicts")
		return
	}
	for _, cycle := range cycles {
		v.report.fail("Break the cycle with a static dict or by restructuring dependencies",
			"circular reference: %s", strings.Join(cycle, " -> "))
	}
}

// checkStaticIndexes validates $${dict[N].key} references against
// static dicts, whose data is known offline. Dynamic sources are
// skipped: their shape only exists at resolve time.
func (v *checker) checkStaticIndexes() {
	failures := 0
	check := func(owner, text string) {
		for _, ref := range vars.ExtractAppVars(text) {
			src, ok := v.catalog.Statics[ref.Source]
			if !ok {
				continue
			}
			if ref.Index >= len(src.Rows) {
				failures++
				v.report.fail(fmt.Sprintf("Valid indices for %q: 0 to %d", ref.Source, len(src.Rows)-1),
					"%s uses index [%d] but %q only has %d items", owner, ref.Index, ref.Source, len(src.Rows))
				continue
			}
			if _, ok := src.Rows[ref.Index][ref.Key]; !ok {
				failures++
				v.report.fail(fmt.Sprintf("Available keys at position %d: %s", ref.Index, rowKeys(src.Rows[ref.Index])),
					"%s references key %q not present at %s[%d]", owner, ref.Key, ref.Source, ref.Index)
			}
		}
	}

	for _, name := range v.catalog.DynamicNames() {
		check(fmt.Sprintf("dynamic_dict %q", name), v.catalog.Dynamics[name].Command)
	}
	for _, cmd := range v.catalog.Commands {
		v.walkTemplates(cmd, fmt.Sprintf("command %q", cmd.Name), check)
	}

	if failures == 0 {
		v.report.pass("all static dict index and key references are valid")
	}
}

func rowKeys(row model.Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func firstAlias(n *model.Node) string {
	if len(n.Aliases) > 0 {
		return n.Aliases[0]
	}
	return "(no alias)"
}

// Print writes the full checklist report.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", ui.Header("Configuration Validator"))
	fmt.Fprintf(w, "Config: %s\n\n", r.Path)

	for _, res := range r.Results {
		if res.Passed {
			fmt.Fprintf(w, "  %s\n", ui.Success(res.Message))
			continue
		}
		fmt.Fprintf(w, "  %s\n", ui.Error(res.Message))
		if res.Hint != "" {
			fmt.Fprintf(w, "    %s\n", ui.Hint(res.Hint))
		}
	}

	fmt.Fprintln(w)
	if r.Passed() {
		fmt.Fprintf(w, "%s\n", ui.Successf("All %d checks passed", len(r.Results)))
	} else {
		fmt.Fprintf(w, "%s\n", ui.Errorf("%d of %d checks failed", r.FailedCount(), len(r.Results)))
	}
}

// PrintErrors writes only the failing checks. Used for the silent
// startup validation that precedes normal execution.
func (r *Report) PrintErrors(w io.Writer) {
	if r.Passed() {
		return
	}
	fmt.Fprintf(w, "%s\n", ui.Errorf("configuration errors in %s", r.Path))
	for _, res := range r.Results {
		if res.Passed {
			continue
		}
		fmt.Fprintf(w, "  %s\n", ui.Error(res.Message))
		if res.Hint != "" {
			fmt.Fprintf(w, "    %s\n", ui.Hint(res.Hint))
		}
	}
	fmt.Fprintf(w, "%s\n", ui.Hint("run 'dya validate' for the full report"))
}
