package shell

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/natanmedeiros/dynalias/internal/ui"
)

// promptModel collects a single input line: textinput with tab
// completion, arrow-key history, Ctrl+C to clear, Ctrl+D to exit.
type promptModel struct {
	input    textinput.Model
	complete CompleteFunc

	history []string
	histIdx int
	histBuf string

	submitted string
	quit      bool
	done      bool
}

func newPromptModel(complete CompleteFunc, history []string) promptModel {
	ti := textinput.New()
	ti.Prompt = ui.Accent.Render("dya> ")
	ti.Focus()
	ti.CharLimit = 0

	return promptModel{
		input:    ti,
		complete: complete,
		history:  history,
		histIdx:  -1,
	}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch keyMsg.Type {
	case tea.KeyCtrlD:
		m.quit = true
		m.done = true
		return m, tea.Quit

	case tea.KeyCtrlC:
		// Clear the line instead of leaving the shell.
		m.input.Reset()
		m.histIdx = -1
		return m, nil

	case tea.KeyEnter:
		m.submitted = m.input.Value()
		m.done = true
		return m, tea.Quit

	case tea.KeyUp:
		if len(m.history) > 0 {
			if m.histIdx == -1 {
				m.histBuf = m.input.Value()
				m.histIdx = len(m.history) - 1
			} else if m.histIdx > 0 {
				m.histIdx--
			}
			m.input.SetValue(m.history[m.histIdx])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.histIdx != -1 {
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
			} else {
				m.histIdx = -1
				m.input.SetValue(m.histBuf)
			}
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyTab:
		m.applyCompletion()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		// Leave the submitted line visible in the scrollback.
		return m.input.Prompt + m.input.Value() + "\n"
	}

	view := m.input.View()
	if hints := m.completionHints(); hints != "" {
		view += "\n" + hints
	}
	return view
}

// completions returns candidates for the current input. Trailing
// whitespace means the user wants the next token; otherwise candidates
// are filtered by the partial last token.
func (m *promptModel) completions() []string {
	if m.complete == nil {
		return nil
	}
	val := m.input.Value()
	tokens := strings.Fields(val)

	if val == "" || strings.HasSuffix(val, " ") {
		return m.complete(tokens)
	}

	prefix := tokens[len(tokens)-1]
	var out []string
	for _, c := range m.complete(tokens[:len(tokens)-1]) {
		if strings.HasPrefix(c, prefix) && c != prefix {
			out = append(out, c)
		}
	}
	return out
}

func (m *promptModel) applyCompletion() {
	comps := m.completions()
	if len(comps) == 0 {
		return
	}
	sel := comps[0]

	val := m.input.Value()
	if val == "" || strings.HasSuffix(val, " ") {
		m.input.SetValue(val + sel + " ")
	} else {
		tokens := strings.Fields(val)
		tokens[len(tokens)-1] = sel
		m.input.SetValue(strings.Join(tokens, " ") + " ")
	}
	m.input.CursorEnd()
}

func (m *promptModel) completionHints() string {
	comps := m.completions()
	if len(comps) == 0 {
		return ""
	}
	if len(comps) > 8 {
		comps = comps[:8]
	}
	return ui.Hint("  " + strings.Join(comps, "  "))
}
