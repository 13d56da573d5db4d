package flow

import (
	"time"

	"github.com/talentscout/maya/internal/genai"
	"github.com/talentscout/maya/internal/models"
)

// ConversationState is the mutable record of one screening session. It is
// owned by the caller of the engine, serializable, and mutated exclusively
// by Engine.ProcessMessage in response to user turns.
type ConversationState struct {
	Phase     models.Phase            `json:"phase"`
	Step      int                     `json:"step"` // 1-based current data-collection step
	Profile   models.CandidateProfile `json:"profile"`
	Questions []string                `json:"questions,omitempty"`
	Answers   []string                `json:"answers,omitempty"`
	Cursor    int                     `json:"cursor"` // index into Questions/Answers
	History   []models.Message        `json:"history,omitempty"`
	StartedAt time.Time               `json:"started_at"`
}

// NewConversationState creates a fresh session in the greeting phase.
func NewConversationState() *ConversationState {
	return &ConversationState{
		Phase:     models.PhaseGreeting,
		Step:      1,
		StartedAt: time.Now(),
	}
}

// Reset discards all session data and returns the state to a freshly
// initialized session.
func (s *ConversationState) Reset() {
	*s = *NewConversationState()
}

// AppendMessage adds a message to the append-only history.
func (s *ConversationState) AppendMessage(role models.Role, content string) {
	s.History = append(s.History, models.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// HistoryView returns a copy of the message history for read-only
// consumers such as the model gateway.
func (s *ConversationState) HistoryView() []models.Message {
	view := make([]models.Message, len(s.History))
	copy(view, s.History)
	return view
}

// Summary exposes the session for presentation adapters: phase, overall
// progress, collected fields with sensitive values masked, and
// per-question assessment progress.
func (s *ConversationState) Summary() models.SessionSummary {
	summary := models.SessionSummary{
		Phase:        s.Phase,
		PhaseDisplay: s.Phase.Display(),
		Progress:     s.progress(),
	}

	for _, field := range models.ProfileFields {
		value, err := s.Profile.Field(field)
		if err != nil || value == "" {
			continue
		}
		switch field {
		case models.FieldEmail:
			value = models.MaskEmail(value)
		case models.FieldPhone:
			value = models.MaskPhone(value)
		}
		summary.Fields = append(summary.Fields, models.SummaryField{
			Label: models.FieldLabel(field),
			Value: value,
		})
	}

	for i, question := range s.Questions {
		status := models.QuestionPending
		switch {
		case i < s.Cursor:
			status = models.QuestionCompleted
		case i == s.Cursor && s.Phase == models.PhaseTechnicalQuestions:
			status = models.QuestionCurrent
		}
		summary.Questions = append(summary.Questions, models.QuestionProgress{
			Index:    i,
			Question: question,
			Status:   status,
		})
	}

	return summary
}

// progress maps the session position to a 0..1 fraction for progress
// bars: data collection spans the first 70%, confirmation sits at 75%,
// the technical assessment covers 80%..95%, conclusion and ended are 100%.
func (s *ConversationState) progress() float64 {
	switch s.Phase {
	case models.PhaseDataCollection:
		return float64(s.Step-1) / float64(StepCount()) * 0.7
	case models.PhaseDataConfirmation:
		return 0.75
	case models.PhaseTechnicalQuestions:
		if len(s.Questions) == 0 {
			return 0.8
		}
		return 0.8 + float64(s.Cursor)/float64(len(s.Questions))*0.15
	case models.PhaseConclusion, models.PhaseEnded:
		return 1.0
	default:
		return 0
	}
}

// beginAssessment installs the question set, sizes the answer log to
// match, and rewinds the cursor. A set that is not exactly five questions
// is replaced with the fallback list.
func (s *ConversationState) beginAssessment(questions []string) {
	if len(questions) != genai.QuestionCount {
		questions = genai.FallbackQuestions()
	}
	s.Questions = questions
	s.Answers = make([]string, len(questions))
	s.Cursor = 0
}
