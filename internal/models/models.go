// Package models defines the core data structures for the TalentScout
// screening assistant.
//
// It includes the conversation phase enum, the candidate profile, chat
// messages, and the evaluation/summary types shared across modules.
package models

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Phase identifies a discrete stage of the scripted conversation.
type Phase string

const (
	// PhaseGreeting is the initial welcome stage.
	PhaseGreeting Phase = "greeting"
	// PhaseDataCollection walks the candidate through the seven data steps.
	PhaseDataCollection Phase = "data_collection"
	// PhaseDataConfirmation asks the candidate to confirm the collected fields.
	PhaseDataConfirmation Phase = "data_confirmation"
	// PhaseTechnicalQuestions runs the generated technical assessment.
	PhaseTechnicalQuestions Phase = "technical_questions"
	// PhaseConclusion wraps up the interview with next steps.
	PhaseConclusion Phase = "conclusion"
	// PhaseEnded is the terminal stage; only a reset leaves it.
	PhaseEnded Phase = "ended"
)

// IsValidPhase checks if the given phase is one of the known stages.
func IsValidPhase(p Phase) bool {
	switch p {
	case PhaseGreeting, PhaseDataCollection, PhaseDataConfirmation,
		PhaseTechnicalQuestions, PhaseConclusion, PhaseEnded:
		return true
	default:
		return false
	}
}

// Display returns a human-readable phase name, e.g. "Data Collection".
func (p Phase) Display() string {
	parts := strings.Split(string(p), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// Error variables for better error handling and testability
var (
	ErrSessionEnded    = errors.New("session has ended")
	ErrInvalidPhase    = errors.New("invalid conversation phase")
	ErrUnknownField    = errors.New("unknown profile field")
	ErrFieldAlreadySet = errors.New("profile field already set")
	ErrInvalidStep     = errors.New("data step index out of range")
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks a message typed by the candidate.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the assistant.
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Profile field names, in collection order.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldExperience = "experience"
	FieldPosition   = "position"
	FieldLocation   = "location"
	FieldTechStack  = "tech_stack"
)

// ProfileFields lists the seven candidate fields in collection order.
var ProfileFields = []string{
	FieldName, FieldEmail, FieldPhone, FieldExperience,
	FieldPosition, FieldLocation, FieldTechStack,
}

// CandidateProfile holds the seven collected candidate fields. Values are
// stored as the candidate typed them; a field is set exactly once, only
// after passing its validator.
type CandidateProfile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Experience string `json:"experience"`
	Position   string `json:"position"`
	Location   string `json:"location"`
	TechStack  string `json:"tech_stack"`
}

// Field returns the value stored under the given field name.
func (p *CandidateProfile) Field(name string) (string, error) {
	switch name {
	case FieldName:
		return p.Name, nil
	case FieldEmail:
		return p.Email, nil
	case FieldPhone:
		return p.Phone, nil
	case FieldExperience:
		return p.Experience, nil
	case FieldPosition:
		return p.Position, nil
	case FieldLocation:
		return p.Location, nil
	case FieldTechStack:
		return p.TechStack, nil
	default:
		return "", ErrUnknownField
	}
}

// SetField stores a validated value under the given field name. A field
// that already holds a value is never overwritten.
func (p *CandidateProfile) SetField(name, value string) error {
	current, err := p.Field(name)
	if err != nil {
		return err
	}
	if current != "" {
		return ErrFieldAlreadySet
	}
	switch name {
	case FieldName:
		p.Name = value
	case FieldEmail:
		p.Email = value
	case FieldPhone:
		p.Phone = value
	case FieldExperience:
		p.Experience = value
	case FieldPosition:
		p.Position = value
	case FieldLocation:
		p.Location = value
	case FieldTechStack:
		p.TechStack = value
	}
	return nil
}

// FirstName returns the first token of the candidate's name, or "there"
// when no name has been collected yet.
func (p *CandidateProfile) FirstName() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "there"
	}
	return strings.Fields(name)[0]
}

// Complete reports whether all seven fields hold values.
func (p *CandidateProfile) Complete() bool {
	for _, field := range ProfileFields {
		value, _ := p.Field(field)
		if value == "" {
			return false
		}
	}
	return true
}

// ExperienceTier classifies the candidate's years of experience; it
// calibrates generated questions and evaluation tone.
type ExperienceTier string

const (
	// TierEntry covers less than 2 years of experience.
	TierEntry ExperienceTier = "entry-level"
	// TierMid covers 2 to under 5 years.
	TierMid ExperienceTier = "mid-level"
	// TierSenior covers 5 years and up.
	TierSenior ExperienceTier = "senior-level"
)

// TierForExperience derives the tier from the stored experience string.
// Unparseable input maps to entry level.
func TierForExperience(experience string) ExperienceTier {
	years, err := strconv.ParseFloat(strings.TrimSpace(experience), 64)
	if err != nil {
		return TierEntry
	}
	switch {
	case years < 2:
		return TierEntry
	case years < 5:
		return TierMid
	default:
		return TierSenior
	}
}

// Evaluation is the structured result of scoring a technical answer.
type Evaluation struct {
	Feedback    string `json:"feedback"`
	Explanation string `json:"explanation"`
}

// QuestionStatus describes progress on one technical question.
type QuestionStatus string

const (
	// QuestionCompleted means the question has been answered.
	QuestionCompleted QuestionStatus = "completed"
	// QuestionCurrent means the question is the one awaiting an answer.
	QuestionCurrent QuestionStatus = "current"
	// QuestionPending means the question has not been reached yet.
	QuestionPending QuestionStatus = "pending"
)

// QuestionProgress pairs a technical question index with its status.
type QuestionProgress struct {
	Index    int            `json:"index"`
	Question string         `json:"question"`
	Status   QuestionStatus `json:"status"`
}

// SummaryField is one collected field prepared for display, with sensitive
// values already masked.
type SummaryField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SessionSummary exposes enough session state for a presentation adapter
// to render phase, progress, and collected data without re-deriving any
// business logic.
type SessionSummary struct {
	Phase        Phase              `json:"phase"`
	PhaseDisplay string             `json:"phase_display"`
	Progress     float64            `json:"progress"`
	Fields       []SummaryField     `json:"fields,omitempty"`
	Questions    []QuestionProgress `json:"questions,omitempty"`
}

var nonDigitRegexp = regexp.MustCompile(`[^0-9]`)

// MaskEmail partially hides an email's local part, keeping the first two
// characters, e.g. "ja**@example.com".
func MaskEmail(email string) string {
	if len(email) <= 5 {
		return email
	}
	at := strings.Index(email, "@")
	if at <= 2 {
		return email
	}
	return email[:2] + strings.Repeat("*", at-2) + email[at:]
}

// MaskPhone keeps the first and last three digits of a phone number and
// hides the rest, e.g. "416***6789".
func MaskPhone(phone string) string {
	digits := nonDigitRegexp.ReplaceAllString(phone, "")
	if len(digits) <= 6 {
		return phone
	}
	return digits[:3] + strings.Repeat("*", len(digits)-6) + digits[len(digits)-3:]
}

// FieldLabel returns the display label for a profile field name,
// e.g. "tech_stack" becomes "Tech Stack".
func FieldLabel(field string) string {
	parts := strings.Split(field, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
