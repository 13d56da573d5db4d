// Package tui renders the screening conversation as an interactive
// terminal chat with a live session sidebar.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/talentscout/maya/internal/flow"
	"github.com/talentscout/maya/internal/models"
)

const progressBarWidth = 20

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	sidebarStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(36)
	faintStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// SessionEndHook runs once when a conversation reaches its terminal
// phase, before the program exits or resets.
type SessionEndHook func(state *flow.ConversationState)

// replyMsg carries the engine's response back into the update loop,
// together with a summary snapshot taken after the turn finished.
type replyMsg struct {
	reply   string
	err     error
	summary models.SessionSummary
}

// chatModel is the bubbletea model for the screening chat.
//
// The shared ConversationState is touched only while no engine call is
// in flight: the submit command owns it for the duration of a turn, and
// Update/View render from the model-owned summary snapshot instead.
type chatModel struct {
	engine *flow.Engine
	state  *flow.ConversationState
	onEnd  SessionEndHook

	input      textinput.Model
	summary    models.SessionSummary
	transcript []string
	waiting    bool
	endedShown bool
	quitting   bool
}

// newChatModel builds the chat model around an engine and a
// caller-owned conversation state.
func newChatModel(engine *flow.Engine, state *flow.ConversationState, onEnd SessionEndHook) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Say hello to begin..."
	ti.CharLimit = 1024
	ti.Focus()
	return chatModel{
		engine:  engine,
		state:   state,
		onEnd:   onEnd,
		input:   ti,
		summary: state.Summary(),
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyCtrlR:
			if !m.waiting && m.summary.Phase == models.PhaseEnded {
				m.state.Reset()
				m.summary = m.state.Summary()
				m.transcript = nil
				m.endedShown = false
				m.input.SetValue("")
				m.input.Placeholder = "Say hello to begin..."
				m.input.Focus()
				return m, textinput.Blink
			}
		case tea.KeyEnter:
			if m.waiting || m.summary.Phase == models.PhaseEnded {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.transcript = append(m.transcript, userStyle.Render("You: ")+text)
			m.input.SetValue("")
			m.waiting = true
			return m, m.submit(text)
		}
	case replyMsg:
		m.waiting = false
		m.summary = msg.summary
		if msg.err != nil {
			if errors.Is(msg.err, models.ErrSessionEnded) {
				return m, nil
			}
			m.transcript = append(m.transcript, errorStyle.Render("error: ")+msg.err.Error())
			return m, nil
		}
		m.transcript = append(m.transcript, assistantStyle.Render("Maya: ")+msg.reply)
		if m.summary.Phase == models.PhaseEnded && !m.endedShown {
			m.endedShown = true
			m.input.Blur()
			m.input.Placeholder = ""
			if m.onEnd != nil {
				m.onEnd(m.state)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	if m.quitting {
		return ""
	}

	var chat strings.Builder
	chat.WriteString(titleStyle.Render("TalentScout Hiring Assistant"))
	chat.WriteString("\n\n")
	for _, line := range m.transcript {
		chat.WriteString(line)
		chat.WriteString("\n")
	}
	chat.WriteString("\n")
	if m.waiting {
		chat.WriteString(faintStyle.Render("Maya is typing..."))
	} else if m.summary.Phase == models.PhaseEnded {
		chat.WriteString(faintStyle.Render("Session ended. Ctrl+R to start over, Esc to quit."))
	} else {
		chat.WriteString(m.input.View())
	}
	chat.WriteString("\n")

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(64).Render(chat.String()),
		renderSidebar(m.summary))
}

// submit hands a user message to the engine off the update loop. The
// command goroutine has exclusive use of the state until its replyMsg is
// delivered; the snapshot it carries is what the UI renders from.
func (m chatModel) submit(text string) tea.Cmd {
	engine, state := m.engine, m.state
	return func() tea.Msg {
		reply, err := engine.ProcessMessage(context.Background(), state, text)
		return replyMsg{reply: reply, err: err, summary: state.Summary()}
	}
}

// renderSidebar draws the live session summary panel.
func renderSidebar(summary models.SessionSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Interview Progress"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Stage: %s\n", summary.PhaseDisplay))
	b.WriteString(progressBar(summary.Progress))
	b.WriteString("\n\n")

	b.WriteString("Candidate Info\n")
	if len(summary.Fields) == 0 {
		b.WriteString(faintStyle.Render("  (nothing collected yet)"))
		b.WriteString("\n")
	}
	for _, f := range summary.Fields {
		b.WriteString(fmt.Sprintf("  %s: %s\n", f.Label, f.Value))
	}

	if len(summary.Questions) > 0 {
		b.WriteString("\nQuestions\n")
		for _, q := range summary.Questions {
			b.WriteString(fmt.Sprintf("  %s Question %d\n", statusIcon(q.Status), q.Index+1))
		}
	}
	return sidebarStyle.Render(b.String())
}

// progressBar renders a fixed-width bar for a 0..1 fraction.
func progressBar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*progressBarWidth + 0.5)
	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", progressBarWidth-filled),
		int(fraction*100+0.5))
}

func statusIcon(status models.QuestionStatus) string {
	switch status {
	case models.QuestionCompleted:
		return "✅"
	case models.QuestionCurrent:
		return "🔄"
	default:
		return "⏳"
	}
}

// Run starts the interactive chat and blocks until the user quits.
func Run(engine *flow.Engine, state *flow.ConversationState, onEnd SessionEndHook) error {
	p := tea.NewProgram(newChatModel(engine, state, onEnd))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run chat interface: %w", err)
	}
	return nil
}
