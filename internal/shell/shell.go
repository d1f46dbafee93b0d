// Package shell implements the interactive prompt shown when dya runs
// without arguments. Each input line is collected by a small bubbletea
// program; execution happens between program runs so spawned commands
// own the terminal.
package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/natanmedeiros/dynalias/internal/ui"
)

// CompleteFunc returns completion candidates for the typed tokens.
type CompleteFunc func(tokens []string) []string

// ExecuteFunc runs one submitted input line.
type ExecuteFunc func(line string)

// Shell is the interactive prompt loop.
type Shell struct {
	complete CompleteFunc
	execute  ExecuteFunc
	history  []string
	out      io.Writer

	// prompt is injectable for tests; the default runs a bubbletea
	// program on the real terminal.
	prompt func(s *Shell) (string, bool)
}

// New builds a shell around a completer and an executor callback.
func New(complete CompleteFunc, execute ExecuteFunc) *Shell {
	s := &Shell{
		complete: complete,
		execute:  execute,
		out:      os.Stdout,
	}
	s.prompt = runPrompt
	return s
}

// SetHistory seeds the up/down-arrow history, oldest first.
func (s *Shell) SetHistory(lines []string) {
	s.history = append([]string{}, lines...)
}

// History returns the session history including lines entered this run.
func (s *Shell) History() []string {
	return s.history
}

// SetOutput redirects banner and status output.
func (s *Shell) SetOutput(w io.Writer) {
	s.out = w
}

// Run loops until the user exits with "exit", "quit", or Ctrl+D.
func (s *Shell) Run() error {
	fmt.Fprintf(s.out, "%s\n", ui.AccentBold.Render("dya interactive shell"))
	fmt.Fprintf(s.out, "%s\n", ui.Hint("exit/quit or Ctrl+D to leave, Tab to complete, ↑↓ for history"))

	for {
		line, quit := s.prompt(s)
		if quit {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		s.history = append(s.history, line)
		s.execute(line)
	}

	fmt.Fprintln(s.out, ui.Hint("bye"))
	return nil
}

// runPrompt reads one line through a bubbletea program. The second
// return value is true when the user asked to leave the shell.
func runPrompt(s *Shell) (string, bool) {
	m := newPromptModel(s.complete, s.history)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		ui.Errf("prompt failed: %v", err)
		return "", true
	}
	pm, ok := final.(promptModel)
	if !ok {
		return "", true
	}
	return pm.submitted, pm.quit
}
