// Package executor assembles the final command line from a matched
// chain and spawns it. It owns two disciplines the rest of the engine
// relies on: strict-mode rejection happens before anything is spawned,
// and the cache store is reloaded and saved around every spawn so
// writes made by the child process are never lost.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/natanmedeiros/dynalias/internal/cache"
	"github.com/natanmedeiros/dynalias/internal/match"
	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/resolver"
	"github.com/natanmedeiros/dynalias/internal/shellquote"
	"github.com/natanmedeiros/dynalias/internal/ui"
	"github.com/natanmedeiros/dynalias/internal/vars"
)

// SpawnFunc runs the final command line. capture asks for stdout to be
// collected instead of streamed; tests inject fakes.
type SpawnFunc func(ctx context.Context, command string, capture bool) ([]byte, error)

// Executor builds and runs the command line for a matched chain.
type Executor struct {
	resolver *resolver.Resolver
	store    *cache.Store
	spawn    SpawnFunc
	out      io.Writer
}

// New returns an executor wired to the real shell.
func New(res *resolver.Resolver, store *cache.Store) *Executor {
	return &Executor{resolver: res, store: store, spawn: SpawnShell, out: os.Stdout}
}

// SetSpawner replaces the process-spawning backend.
func (e *Executor) SetSpawner(spawn SpawnFunc) { e.spawn = spawn }

// SetOutput redirects the executor's own output (not the child's).
func (e *Executor) SetOutput(w io.Writer) { e.out = w }

// Execute runs the matched command. All failures are reported as
// diagnostics; the host process always survives.
func (e *Executor) Execute(res match.Result) {
	chain := res.Chain

	if chain.Strict() && len(res.Remaining) > 0 {
		ui.Errf("strict mode enabled, unknown arguments: %s", strings.Join(res.Remaining, " "))
		return
	}

	command := vars.ResolveAppVars(chain.Template(), vars.AppContext{
		Resolve: e.resolver.ResolveOne,
		Context: res.Bindings.Rows,
		Locals:  e.store.Local,
	})
	command = vars.ResolveUserVars(command, res.Bindings.Words)

	if len(res.Remaining) > 0 {
		command += " " + shellquote.QuoteJoin(res.Remaining)
	}

	fmt.Fprintf(e.out, "%s %s\n", ui.AccentBold.Render("Running:"), command)
	fmt.Fprintln(e.out, ui.Muted.Render(strings.Repeat("-", 30)))

	// The cache file is shared with the child we are about to spawn:
	// reload, merge, and save on every exit path, success or not.
	defer e.syncCache()

	// Keep the parent alive through Ctrl+C so the child owns the
	// interrupt, and put the terminal back whatever the child did.
	signal.Ignore(os.Interrupt)
	defer signal.Reset(os.Interrupt)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		if state, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, state)
		}
	}

	timeout := chain.Timeout()
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	if chain.SetLocals() {
		e.runSetLocals(ctx, command, timeout)
		return
	}

	if _, err := e.spawn(ctx, command, false); err != nil {
		e.reportSpawnError(ctx, err, timeout)
	}
}

// runSetLocals captures stdout, requires exactly one JSON object, and
// persists each field into the locals store.
func (e *Executor) runSetLocals(ctx context.Context, command string, timeout int) {
	stdout, err := e.spawn(ctx, command, true)
	if err != nil {
		e.reportSpawnError(ctx, err, timeout)
		return
	}

	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		ui.Errf("set-locals command produced no output (expected a JSON object)")
		return
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		ui.Errf("set-locals command output must be valid JSON: %v", err)
		fmt.Fprintf(e.out, "output received: %s\n", trimmed)
		return
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		ui.Errf("set-locals command output must be a JSON object, not a list or scalar")
		fmt.Fprintf(e.out, "output received: %s\n", trimmed)
		return
	}

	for key, value := range obj {
		e.store.SetLocal(key, model.FormatValue(value))
	}

	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err == nil {
		fmt.Fprintln(e.out, string(pretty))
	}
}

func (e *Executor) reportSpawnError(ctx context.Context, err error, timeout int) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ui.Errf("command timed out after %ds", timeout)
		return
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The child already wrote its own errors to the terminal.
		return
	}
	ui.Errf("execution error: %v", err)
}

// syncCache reloads the store from disk, picking up writes from the
// spawned child, and saves the merged state back.
func (e *Executor) syncCache() {
	if err := e.store.Load(); err != nil {
		ui.Warnf("failed to reload cache: %v", err)
	}
	if err := e.store.Save(); err != nil {
		ui.Warnf("failed to save cache: %v", err)
	}
}

// SpawnShell runs command through the user's shell. When capture is
// false the child inherits the terminal.
func SpawnShell(ctx context.Context, command string, capture bool) ([]byte, error) {
	shell := strings.TrimSpace(os.Getenv("SHELL"))
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	if capture {
		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = os.Stderr
		cmd.Stdin = os.Stdin
		err := cmd.Run()
		return stdout.Bytes(), err
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return nil, cmd.Run()
}
