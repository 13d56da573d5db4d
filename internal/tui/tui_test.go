package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/talentscout/maya/internal/flow"
	"github.com/talentscout/maya/internal/models"
)

func TestProgressBar(t *testing.T) {
	cases := []struct {
		fraction float64
		percent  string
	}{
		{0, "0%"},
		{0.75, "75%"},
		{1, "100%"},
		{1.5, "100%"},
		{-0.2, "0%"},
	}
	for _, c := range cases {
		bar := progressBar(c.fraction)
		if !strings.HasSuffix(bar, c.percent) {
			t.Errorf("progressBar(%v) = %q, want suffix %q", c.fraction, bar, c.percent)
		}
	}
}

func TestStatusIcon(t *testing.T) {
	if statusIcon(models.QuestionCompleted) != "✅" {
		t.Error("completed icon mismatch")
	}
	if statusIcon(models.QuestionCurrent) != "🔄" {
		t.Error("current icon mismatch")
	}
	if statusIcon(models.QuestionPending) != "⏳" {
		t.Error("pending icon mismatch")
	}
}

func TestRenderSidebarShowsFieldsAndQuestions(t *testing.T) {
	summary := models.SessionSummary{
		Phase:        models.PhaseTechnicalQuestions,
		PhaseDisplay: "Technical Questions",
		Progress:     0.8,
		Fields: []models.SummaryField{
			{Label: "Full Name", Value: "Jane Doe"},
			{Label: "Email Address", Value: "ja******@example.com"},
		},
		Questions: []models.QuestionProgress{
			{Index: 0, Question: "Q1?", Status: models.QuestionCompleted},
			{Index: 1, Question: "Q2?", Status: models.QuestionCurrent},
			{Index: 2, Question: "Q3?", Status: models.QuestionPending},
		},
	}
	out := renderSidebar(summary)
	for _, want := range []string{"Technical Questions", "Jane Doe", "ja******@example.com", "Question 2", "✅", "🔄", "⏳"} {
		if !strings.Contains(out, want) {
			t.Errorf("sidebar missing %q:\n%s", want, out)
		}
	}
}

func TestUpdateEnterWithEmptyInputDoesNothing(t *testing.T) {
	m := newChatModel(nil, flow.NewConversationState(), nil)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command for empty input")
	}
	if len(updated.(chatModel).transcript) != 0 {
		t.Error("expected empty transcript")
	}
}

func TestUpdateEnterSubmitsInput(t *testing.T) {
	m := newChatModel(flow.NewEngine(nil), flow.NewConversationState(), nil)
	m.input.SetValue("hello")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cm := updated.(chatModel)
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if !cm.waiting {
		t.Error("expected waiting state after submit")
	}
	if len(cm.transcript) != 1 || !strings.Contains(cm.transcript[0], "hello") {
		t.Errorf("expected user line in transcript, got %v", cm.transcript)
	}
	if cm.input.Value() != "" {
		t.Error("expected input cleared after submit")
	}
}

func TestUpdateReplyAppendsAssistantLine(t *testing.T) {
	m := newChatModel(nil, flow.NewConversationState(), nil)
	m.waiting = true
	updated, _ := m.Update(replyMsg{reply: "Welcome!"})
	cm := updated.(chatModel)
	if cm.waiting {
		t.Error("expected waiting cleared")
	}
	if len(cm.transcript) != 1 || !strings.Contains(cm.transcript[0], "Welcome!") {
		t.Errorf("expected assistant line, got %v", cm.transcript)
	}
}

func TestUpdateReplyEndedRunsHookOnce(t *testing.T) {
	state := flow.NewConversationState()
	state.Phase = models.PhaseEnded
	hookCalls := 0
	m := newChatModel(nil, state, func(*flow.ConversationState) { hookCalls++ })

	updated, _ := m.Update(replyMsg{reply: "Goodbye!", summary: state.Summary()})
	cm := updated.(chatModel)
	if hookCalls != 1 {
		t.Fatalf("expected hook called once, got %d", hookCalls)
	}
	if !cm.endedShown {
		t.Error("expected endedShown set")
	}

	updated, _ = cm.Update(replyMsg{reply: "again", summary: state.Summary()})
	if hookCalls != 1 {
		t.Errorf("hook ran again on later reply, calls=%d", hookCalls)
	}
	_ = updated
}

func TestUpdateCtrlRResetsEndedSession(t *testing.T) {
	state := flow.NewConversationState()
	state.Phase = models.PhaseEnded
	m := newChatModel(nil, state, nil)
	m.transcript = []string{"old line"}
	m.endedShown = true

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	cm := updated.(chatModel)
	if state.Phase != models.PhaseGreeting {
		t.Errorf("expected state reset to greeting, got %s", state.Phase)
	}
	if len(cm.transcript) != 0 {
		t.Error("expected transcript cleared")
	}
	if cm.endedShown {
		t.Error("expected endedShown cleared")
	}
}

func TestUpdateCtrlRIgnoredMidSession(t *testing.T) {
	state := flow.NewConversationState()
	state.Phase = models.PhaseDataCollection
	m := newChatModel(nil, state, nil)
	m.transcript = []string{"line"}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	cm := updated.(chatModel)
	if state.Phase != models.PhaseDataCollection {
		t.Errorf("mid-session reset should be ignored, phase now %s", state.Phase)
	}
	if len(cm.transcript) != 1 {
		t.Error("transcript should be untouched")
	}
}

func TestViewEndedShowsRestartHint(t *testing.T) {
	state := flow.NewConversationState()
	state.Phase = models.PhaseEnded
	m := newChatModel(nil, state, nil)
	if !strings.Contains(m.View(), "Ctrl+R") {
		t.Error("expected restart hint in ended view")
	}
}

// slowGateway stalls free-form replies so an engine turn stays in flight
// while the test renders.
type slowGateway struct {
	delay time.Duration
}

func (g *slowGateway) PlausibilityCheck(ctx context.Context, text, fieldLabel string) (bool, error) {
	return true, nil
}

func (g *slowGateway) GenerateQuestions(ctx context.Context, techStack, experience string) ([]string, error) {
	return []string{"Q1?", "Q2?", "Q3?", "Q4?", "Q5?"}, nil
}

func (g *slowGateway) EvaluateAnswer(ctx context.Context, question, answer, firstName string, tier models.ExperienceTier, techStack string) (models.Evaluation, error) {
	return models.Evaluation{Feedback: "ok", Explanation: "ok"}, nil
}

func (g *slowGateway) FreeFormReply(ctx context.Context, history []models.Message, directive string) (string, error) {
	time.Sleep(g.delay)
	return "Welcome!", nil
}

func TestViewRendersWhileEngineTurnInFlight(t *testing.T) {
	engine := flow.NewEngine(&slowGateway{delay: 20 * time.Millisecond})
	m := newChatModel(engine, flow.NewConversationState(), nil)
	m.input.SetValue("hello")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cm := updated.(chatModel)
	if cmd == nil {
		t.Fatal("expected a submit command")
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	// Keep rendering while the engine goroutine owns the state; the race
	// detector flags any shared read.
	var msg tea.Msg
	for msg == nil {
		_ = cm.View()
		select {
		case msg = <-done:
		default:
		}
	}

	reply, ok := msg.(replyMsg)
	if !ok {
		t.Fatalf("expected replyMsg, got %T", msg)
	}
	if reply.err != nil {
		t.Fatalf("turn failed: %v", reply.err)
	}
	if reply.summary.Phase != models.PhaseDataCollection {
		t.Errorf("expected snapshot phase data_collection, got %s", reply.summary.Phase)
	}

	updated, _ = cm.Update(reply)
	cm = updated.(chatModel)
	if cm.summary.Phase != models.PhaseDataCollection {
		t.Errorf("expected model summary updated from snapshot, got %s", cm.summary.Phase)
	}
	if !strings.Contains(cm.transcript[len(cm.transcript)-1], "Welcome!") {
		t.Errorf("expected assistant reply in transcript, got %v", cm.transcript)
	}
}
