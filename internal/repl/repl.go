// Package repl is the interactive terminal front end: a bubbletea program
// around an interp.Session with persistent command history.
package repl

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mython/internal/history"
	"mython/internal/interp"
	"mython/internal/runtime"
)

const prompt = ">>> "
const continuation = "... "

var (
	accentColor = lipgloss.Color("#7C3AED")
	okColor     = lipgloss.Color("#22C55E")
	failColor   = lipgloss.Color("#DC2626")
	dimColor    = lipgloss.Color("#71717A")

	promptStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	outputStyle = lipgloss.NewStyle().Foreground(okColor)
	errStyle    = lipgloss.NewStyle().Foreground(failColor)
	dimStyle    = lipgloss.NewStyle().Foreground(dimColor)
	titleStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Padding(0, 1)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

type entry struct {
	input  string
	output string
	isErr  bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
	EOF   key.Binding
	Clear key.Binding
	Vars  key.Binding
	Help  key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous input")),
	Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next input")),
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	EOF:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "quit")),
	Clear: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Vars:  key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "variables")),
	Help:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "help")),
}

type Model struct {
	textInput textinput.Model
	session   *interp.Session
	output    *bytes.Buffer
	store     *history.Store

	transcript []entry
	recall     []string
	recallIdx  int

	// block collects the lines of a multi-line statement: a line ending in
	// ':' opens a block that a blank line closes and submits.
	block []string

	width       int
	height      int
	showHelp    bool
	showVars    bool
	quitting    bool
	initialized bool
}

func New(store *history.Store, recallLimit int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a statement..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = prompt

	output := &bytes.Buffer{}
	return Model{
		textInput: ti,
		session:   interp.NewSession(output),
		output:    output,
		store:     store,
		recall:    store.Recent(recallLimit),
		recallIdx: -1,
	}
}

// Run starts the REPL program and blocks until the user quits.
func Run(store *history.Store, recallLimit int) error {
	p := tea.NewProgram(New(store, recallLimit), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit), key.Matches(msg, keys.EOF):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Clear):
			m.transcript = nil
			return m, nil

		case key.Matches(msg, keys.Vars):
			m.showVars = !m.showVars
			return m, nil

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.recall) > 0 {
				if m.recallIdx == -1 {
					m.recallIdx = len(m.recall) - 1
				} else if m.recallIdx > 0 {
					m.recallIdx--
				}
				m.textInput.SetValue(m.recall[m.recallIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.recallIdx != -1 {
				if m.recallIdx < len(m.recall)-1 {
					m.recallIdx++
					m.textInput.SetValue(m.recall[m.recallIdx])
				} else {
					m.recallIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Enter):
			line := m.textInput.Value()
			m.textInput.SetValue("")
			m.recallIdx = -1
			m = m.accept(line)
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// accept feeds one line into the block buffer or runs it.
func (m Model) accept(line string) Model {
	trimmed := strings.TrimSpace(line)

	if len(m.block) > 0 {
		if trimmed == "" {
			src := strings.Join(m.block, "\n") + "\n"
			m.block = nil
			m.textInput.Prompt = prompt
			m.textInput.PromptStyle = promptStyle
			return m.run(src)
		}
		m.block = append(m.block, line)
		return m
	}

	if trimmed == "" {
		return m
	}
	if strings.HasPrefix(trimmed, ":") {
		return m.command(trimmed)
	}
	if opensBlock(trimmed) {
		m.block = []string{line}
		m.textInput.Prompt = continuation
		m.textInput.PromptStyle = dimStyle
		return m
	}
	return m.run(line + "\n")
}

// opensBlock reports whether the line starts a multi-line statement.
func opensBlock(trimmed string) bool {
	return strings.HasSuffix(trimmed, ":")
}

func (m Model) command(input string) Model {
	switch input {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.transcript = nil
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":reset", ":r":
		m.output.Reset()
		m.session = interp.NewSession(m.output)
		m.transcript = append(m.transcript, entry{input: input, output: "session reset"})
	case ":quit", ":q":
		m.quitting = true
	default:
		m.transcript = append(m.transcript, entry{input: input, output: "unknown command: " + input, isErr: true})
	}
	return m
}

func (m Model) run(src string) Model {
	m.output.Reset()
	_, err := m.session.Eval(src)
	text := strings.TrimRight(m.output.String(), "\n")

	e := entry{input: strings.TrimRight(src, "\n"), output: text}
	if err != nil {
		if text != "" {
			e.output = text + "\n" + err.Error()
		} else {
			e.output = err.Error()
		}
		e.isErr = true
	}
	m.transcript = append(m.transcript, e)

	m.store.Append(e.input)
	m.recall = append(m.recall, e.input)
	return m
}

func (m Model) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return dimStyle.Render("bye\n")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("mython") + " " + dimStyle.Render("interactive interpreter") + "\n")
	rule := min(m.width-2, 60)
	if rule < 0 {
		rule = 0
	}
	b.WriteString(dimStyle.Render(strings.Repeat("─", rule)) + "\n\n")

	reserved := 8
	if m.showHelp {
		reserved += 10
	}
	if m.showVars {
		reserved += len(m.session.Globals()) + 3
	}
	available := m.height - reserved

	start := 0
	if len(m.transcript) > available/2 && available > 0 {
		start = len(m.transcript) - available/2
	}
	for _, e := range m.transcript[start:] {
		for i, line := range strings.Split(e.input, "\n") {
			marker := prompt
			if i > 0 {
				marker = continuation
			}
			b.WriteString(dimStyle.Render(marker) + line + "\n")
		}
		if e.output != "" {
			style := outputStyle
			if e.isErr {
				style = errStyle
			}
			for _, line := range strings.Split(e.output, "\n") {
				b.WriteString(style.Render(line) + "\n")
			}
		}
	}
	b.WriteString("\n")

	if m.showVars {
		b.WriteString(m.varsPanel() + "\n")
	}
	if m.showHelp {
		b.WriteString(helpPanel() + "\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")
	b.WriteString(footer())
	return b.String()
}

func (m Model) varsPanel() string {
	globals := m.session.Globals()
	if len(globals) == 0 {
		return panelStyle.Render(dimStyle.Render("no variables defined"))
	}
	lines := []string{titleStyle.Render("Variables")}
	for name, val := range globals {
		dummy := &runtime.DummyContext{}
		text := "?"
		if err := val.Print(dummy.Output(), dummy); err == nil {
			text = dummy.String()
		}
		lines = append(lines, fmt.Sprintf("  %s = %s", promptStyle.Render(name), text))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func helpPanel() string {
	rows := []struct{ k, d string }{
		{"↑/↓", "recall previous inputs"},
		{"enter", "run the line; a line ending in ':' opens a block"},
		{"(blank)", "a blank line closes and runs an open block"},
		{":vars", "toggle the variables panel"},
		{":clear", "clear the transcript"},
		{":reset", "drop all bindings and start over"},
		{":quit", "exit"},
	}
	lines := []string{titleStyle.Render("Help")}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			promptStyle.Render(fmt.Sprintf("%-8s", r.k)), dimStyle.Render(r.d)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func footer() string {
	return promptStyle.Render("ctrl+k") + dimStyle.Render(" help  ") +
		promptStyle.Render("ctrl+v") + dimStyle.Render(" vars  ") +
		promptStyle.Render("ctrl+l") + dimStyle.Render(" clear  ") +
		promptStyle.Render("ctrl+c") + dimStyle.Render(" quit")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
