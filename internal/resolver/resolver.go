// Package resolver turns named data sources into rows. Static sources
// resolve to their configured rows; dynamic sources run a shell command
// and project its JSON output through a field mapping. Results are
// memoized for the life of the process and cached on disk per-source
// TTL, because the interactive shell calls ResolveOne on every
// keystroke.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/natanmedeiros/dynalias/internal/cache"
	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/ui"
	"github.com/natanmedeiros/dynalias/internal/vars"
)

// RunFunc executes a shell command and returns its stdout. Tests inject
// fakes; production uses RunShell.
type RunFunc func(ctx context.Context, command string) ([]byte, error)

// Resolver resolves named sources lazily with per-process memoization
// and cycle detection across dynamic-source references.
type Resolver struct {
	catalog *model.Catalog
	store   *cache.Store

	memo map[string][]model.Row

	// inProgress holds dynamic sources currently resolving; a name
	// re-entering this set is a dependency cycle.
	inProgress map[string]bool

	run RunFunc
}

// New returns a resolver over the given catalog and cache store.
func New(catalog *model.Catalog, store *cache.Store) *Resolver {
	return &Resolver{
		catalog:    catalog,
		store:      store,
		memo:       make(map[string][]model.Row),
		inProgress: make(map[string]bool),
		run:        RunShell,
	}
}

// SetRunner replaces the process-spawning backend.
func (r *Resolver) SetRunner(run RunFunc) { r.run = run }

// ResolveOne resolves a single source by name. Every failure mode
// (cycle, spawn error, bad output, unknown name) degrades to empty rows
// with a diagnostic; callers never see an error.
func (r *Resolver) ResolveOne(name string) []model.Row {
	if rows, ok := r.memo[name]; ok {
		return rows
	}

	// Static sources carry no cycle risk and no TTL.
	if src, ok := r.catalog.Statics[name]; ok {
		r.memo[name] = src.Rows
		return src.Rows
	}

	src, ok := r.catalog.Dynamics[name]
	if !ok {
		ui.Warnf("source %q not found in dicts or dynamic dicts", name)
		return nil
	}

	if r.inProgress[name] {
		ui.Warnf("circular reference detected resolving dynamic dict %q: %s", name, r.progressChain(name))
		// Not memoized: a differently-reached call may still succeed.
		return nil
	}
	r.inProgress[name] = true
	defer delete(r.inProgress, name)

	if rows, ok := r.store.Get(name, src.CacheTTL); ok {
		if len(rows) == 0 {
			ui.Warnf("dynamic dict %q has empty cached data; clear the cache to refresh", name)
		}
		r.memo[name] = rows
		return rows
	}

	rows := r.fetch(src)
	r.store.Set(name, rows)
	if err := r.store.Save(); err != nil {
		ui.Warnf("failed to save cache: %v", err)
	}
	r.memo[name] = rows
	return rows
}

// ResolveAll eagerly resolves every static source, then every dynamic
// source in ascending priority order. The ordering is advisory only;
// ResolveOne pulls dependencies recursively regardless.
func (r *Resolver) ResolveAll() {
	for name := range r.catalog.Statics {
		r.ResolveOne(name)
	}
	for _, src := range r.catalog.DynamicsByPriority() {
		r.ResolveOne(src.Name)
	}
}

// fetch runs a dynamic source's command and maps its JSON output.
func (r *Resolver) fetch(src *model.DynamicSource) []model.Row {
	// References to other sources inside the command template resolve
	// recursively here, which is what allows arbitrary chain depth.
	command := vars.ResolveAppVars(src.Command, vars.AppContext{Resolve: r.ResolveOne})

	timeout := time.Duration(src.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdout, err := r.run(ctx, command)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			ui.Warnf("dynamic dict %q: command timed out after %ds", src.Name, src.Timeout)
		} else {
			ui.Warnf("dynamic dict %q: %v", src.Name, err)
		}
		return nil
	}

	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		ui.Warnf("dynamic dict %q: command produced no output (expected JSON array or object): %s", src.Name, truncate(command, 100))
		return nil
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		ui.Warnf("dynamic dict %q: invalid JSON output: %v", src.Name, err)
		return nil
	}

	var items []any
	switch v := decoded.(type) {
	case []any:
		items = v
	case map[string]any:
		// A bare object is a single-row sequence.
		items = []any{v}
	default:
		ui.Warnf("dynamic dict %q: output must be a JSON array or object, got %T", src.Name, decoded)
		return nil
	}

	rows := make([]model.Row, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make(model.Row)
		for internal, external := range src.Mapping {
			if v, ok := obj[external]; ok {
				row[internal] = v
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		ui.Warnf("dynamic dict %q returned no mappable rows: %s", src.Name, truncate(command, 100))
	}
	return rows
}

func (r *Resolver) progressChain(tail string) string {
	names := make([]string, 0, len(r.inProgress)+1)
	for name := range r.inProgress {
		names = append(names, name)
	}
	names = append(names, tail)
	return strings.Join(names, " -> ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RunShell executes command through the user's shell and returns its
// stdout. A non-zero exit surfaces as an error carrying stderr.
func RunShell(ctx context.Context, command string) ([]byte, error) {
	shell := strings.TrimSpace(os.Getenv("SHELL"))
	if shell == "" {
		shell = "/bin/sh"
	}
	out, err := exec.CommandContext(ctx, shell, "-c", command).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), bytes.TrimSpace(exitErr.Stderr))
		}
		return nil, err
	}
	return out, nil
}
