// Package tui implements the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driving"
)

// exchange is one question and its answer in the transcript.
type exchange struct {
	question string
	answer   domain.Answer
	err      error
}

// answerMsg carries a completed answer back into the update loop.
type answerMsg struct {
	question string
	answer   domain.Answer
	err      error
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	engine   driving.EngineService
	input    textinput.Model
	viewport viewport.Model
	styles   Styles

	history []exchange
	useRAG  bool
	waiting bool
	ready   bool
}

// New creates a chat model over the given engine.
func New(engine driving.EngineService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		engine:   engine,
		input:    ti,
		viewport: viewport.New(0, 0),
		styles:   DefaultStyles(),
		useRAG:   true,
	}
}

// Init initialises the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := m.styles.ChatBox.GetFrameSize()
		_, ih := m.styles.InputBox.GetFrameSize()
		// header, status line, and a spacer
		reserved := 3 + ih
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" || m.waiting {
				return m, nil
			}
			m.waiting = true
			m.input.Reset()
			return m, m.askCmd(query)
		case "ctrl+r":
			m.useRAG = !m.useRAG
			return m, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.waiting = false
		m.history = append(m.history, exchange{
			question: msg.question,
			answer:   msg.answer,
			err:      msg.err,
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.styles.Title.Render("askdoc chat")
	chat := m.styles.ChatBox.Render(m.viewport.View())
	input := m.styles.InputBox.Render(m.input.View())

	mode := "RAG"
	if !m.useRAG {
		mode = "direct"
	}
	status := fmt.Sprintf("mode: %s (ctrl+r to toggle)  ctrl+c to quit", mode)
	if m.waiting {
		status = "thinking..."
	}

	return header + "\n" + chat + "\n" + input + "\n" + m.styles.Muted.Render(status)
}

// askCmd runs the question against the engine off the update loop.
func (m Model) askCmd(query string) tea.Cmd {
	engine := m.engine
	useRAG := m.useRAG
	return func() tea.Msg {
		answer, err := engine.Ask(context.Background(), query, useRAG)
		return answerMsg{question: query, answer: answer, err: err}
	}
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return m.styles.Muted.Render("No questions yet.")
	}

	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.styles.User.Render("You: " + ex.question))
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString(m.styles.Error.Render("Error: " + ex.err.Error()))
			continue
		}
		b.WriteString(m.styles.Answer.Render(ex.answer.Text))
		if ex.answer.ContextUsed {
			b.WriteString("\n")
			b.WriteString(m.styles.Muted.Render(
				fmt.Sprintf("(%d context chunks)", len(ex.answer.Sources))))
		}
	}
	return b.String()
}
