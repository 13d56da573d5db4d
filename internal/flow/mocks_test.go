package flow

import (
	"context"

	"github.com/talentscout/maya/internal/models"
)

// mockGateway implements genai.ClientInterface for tests. Zero value
// behaves like a healthy gateway that accepts everything.
type mockGateway struct {
	plausible     bool
	plausibleErr  error
	questions     []string
	questionsErr  error
	eval          models.Evaluation
	evalErr       error
	reply         string
	replyErr      error
	evalCalls     int
	questionCalls int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		plausible: true,
		questions: []string{"Q1?", "Q2?", "Q3?", "Q4?", "Q5?"},
		eval:      models.Evaluation{Feedback: "Nice work!", Explanation: "Here's a breakdown: details."},
		reply:     "Welcome to TalentScout!",
	}
}

func (m *mockGateway) PlausibilityCheck(ctx context.Context, text, fieldLabel string) (bool, error) {
	if m.plausibleErr != nil {
		return false, m.plausibleErr
	}
	return m.plausible, nil
}

func (m *mockGateway) GenerateQuestions(ctx context.Context, techStack, experience string) ([]string, error) {
	m.questionCalls++
	if m.questionsErr != nil {
		return nil, m.questionsErr
	}
	return m.questions, nil
}

func (m *mockGateway) EvaluateAnswer(ctx context.Context, question, answer, firstName string, tier models.ExperienceTier, techStack string) (models.Evaluation, error) {
	m.evalCalls++
	if m.evalErr != nil {
		return models.Evaluation{}, m.evalErr
	}
	return m.eval, nil
}

func (m *mockGateway) FreeFormReply(ctx context.Context, history []models.Message, directive string) (string, error) {
	if m.replyErr != nil {
		return "", m.replyErr
	}
	return m.reply, nil
}
