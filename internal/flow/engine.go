package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/talentscout/maya/internal/genai"
	"github.com/talentscout/maya/internal/models"
)

// exitKeywords end the conversation from any non-terminal phase. Matched
// case-insensitively as substrings, before any phase-specific handling.
var exitKeywords = []string{
	"bye", "goodbye", "exit", "quit", "end", "stop", "finish", "done", "thanks", "thank you",
}

// affirmativeKeywords confirm the collected data in the confirmation phase.
var affirmativeKeywords = []string{"yes", "correct", "confirm", "proceed"}

// personaPrompt is the base system directive for free-form replies.
const personaPrompt = "You are Maya, a friendly, warm, and professional hiring assistant for TalentScout. " +
	"You are encouraging, empathetic, and make candidates feel comfortable and valued. " +
	"Always address the candidate by their name if you know it."

const greetingDirective = personaPrompt + " Greet the candidate warmly, introduce yourself, " +
	"explain the process (info gathering, technical questions, next steps), and ask for their " +
	"full name to begin in a very friendly manner."

const conclusionDirective = personaPrompt + " Thank the candidate warmly for their time. " +
	"Let them know they did great, their info is recorded, the team will review it, and they'll " +
	"hear back in 2-3 business days. End on an encouraging and positive note, wishing them luck."

// freeFormFallback is the apologetic retry message used when a free-form
// gateway call fails.
const freeFormFallback = "I'm experiencing some technical difficulties right now. Could we try that again? 😊"

// Engine is the phase state machine. It processes exactly one user turn
// to completion per call, mutating the caller-owned ConversationState and
// returning the assistant's reply.
type Engine struct {
	gateway genai.ClientInterface
}

// NewEngine creates a phase engine backed by the given model gateway.
func NewEngine(gateway genai.ClientInterface) *Engine {
	return &Engine{gateway: gateway}
}

// ProcessMessage runs one conversation turn. The user message is appended
// to the history, the phase transition rules are applied, and the
// resulting assistant message is appended and returned. An error is only
// returned for state-consistency violations; gateway faults resolve to
// their documented fallbacks.
func (e *Engine) ProcessMessage(ctx context.Context, state *ConversationState, input string) (string, error) {
	if state.Phase == models.PhaseEnded {
		return "", models.ErrSessionEnded
	}
	if !models.IsValidPhase(state.Phase) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidPhase, state.Phase)
	}

	state.AppendMessage(models.RoleUser, input)

	reply, err := e.dispatch(ctx, state, input)
	if err != nil {
		return "", err
	}

	state.AppendMessage(models.RoleAssistant, reply)
	slog.Debug("flow.ProcessMessage: turn complete", "phase", state.Phase, "step", state.Step, "cursor", state.Cursor)
	return reply, nil
}

// dispatch applies the exit pre-check and the phase-specific transition.
func (e *Engine) dispatch(ctx context.Context, state *ConversationState, input string) (string, error) {
	if containsAny(input, exitKeywords) {
		slog.Info("flow.dispatch: exit keyword detected, ending session", "phase", state.Phase)
		state.Phase = models.PhaseEnded
		return fmt.Sprintf("Thank you for your time! Best of luck, %s! 👋", state.Profile.FirstName()), nil
	}

	switch state.Phase {
	case models.PhaseGreeting:
		return e.handleGreeting(ctx, state)
	case models.PhaseDataCollection:
		return e.handleDataCollection(ctx, state, input)
	case models.PhaseDataConfirmation:
		return e.handleDataConfirmation(ctx, state, input)
	case models.PhaseTechnicalQuestions:
		return e.handleTechnicalQuestions(ctx, state, input)
	case models.PhaseConclusion:
		return e.handleConclusion(ctx, state)
	default:
		return "", fmt.Errorf("%w: %q", models.ErrInvalidPhase, state.Phase)
	}
}

// handleGreeting welcomes the candidate and hands off to data collection.
// The user's first message only triggers the welcome; it is not collected.
func (e *Engine) handleGreeting(ctx context.Context, state *ConversationState) (string, error) {
	reply, err := e.gateway.FreeFormReply(ctx, state.HistoryView(), greetingDirective)
	if err != nil {
		slog.Warn("flow.handleGreeting: free-form reply failed, using fallback", "error", err)
		reply = freeFormFallback
	}
	state.Phase = models.PhaseDataCollection
	return reply, nil
}

// handleDataCollection validates the message against the current step,
// stores accepted values, and advances to confirmation after step seven.
func (e *Engine) handleDataCollection(ctx context.Context, state *ConversationState, input string) (string, error) {
	step, err := StepAt(state.Step)
	if err != nil {
		return "", fmt.Errorf("data collection step %d: %w", state.Step, err)
	}

	if !ValidateStep(ctx, e.gateway, step, input) {
		slog.Debug("flow.handleDataCollection: input rejected", "step", step.Index, "field", step.Field)
		return fmt.Sprintf("I need a bit more clarity, %s. %s Could you please try again? 😊",
			state.Profile.FirstName(), step.ErrorMsg), nil
	}

	if err := state.Profile.SetField(step.Field, input); err != nil {
		return "", fmt.Errorf("store field %s: %w", step.Field, err)
	}
	slog.Debug("flow.handleDataCollection: field stored", "step", step.Index, "field", step.Field)

	reply := e.acknowledgeStep(state, step)
	state.Step++

	if state.Step > StepCount() {
		state.Phase = models.PhaseDataConfirmation
		reply = e.confirmationSummary(state)
	}
	return reply, nil
}

// acknowledgeStep builds the scripted, personalized acknowledgement for an
// accepted step, ending with the next step's prompt.
func (e *Engine) acknowledgeStep(state *ConversationState, step DataStep) string {
	first := state.Profile.FirstName()
	next, err := StepAt(step.Index + 1)
	if err != nil {
		// Step seven's acknowledgement is replaced by the confirmation
		// summary in the caller.
		return ""
	}

	switch step.Index {
	case 1:
		return fmt.Sprintf("Hi %s! Thanks for sharing your full name. Next, %s", first, next.Prompt)
	case 2:
		return fmt.Sprintf("Got it, %s! Your email address is %s. Next, %s", first, state.Profile.Email, next.Prompt)
	case 3:
		return fmt.Sprintf("%s! Your phone number is %s. Next, %s", first, state.Profile.Phone, next.Prompt)
	case 4:
		return fmt.Sprintf("%s! %sNext, %s", first, experienceRemark(state.Profile.Experience), next.Prompt)
	case 5:
		return fmt.Sprintf("%s! You're interested in a %s position. That's great! Next, %s", first, state.Profile.Position, next.Prompt)
	case 6:
		return fmt.Sprintf("%s! You're looking for a %s opportunity in %s. Got it! Next, %s",
			first, state.Profile.Position, state.Profile.Location, next.Prompt)
	default:
		return fmt.Sprintf("Thanks, %s! Next, %s", first, next.Prompt)
	}
}

// experienceRemark tiers the acknowledgement for the experience step.
func experienceRemark(experience string) string {
	years, err := strconv.ParseFloat(strings.TrimSpace(experience), 64)
	if err != nil {
		return ""
	}
	switch {
	case years == 0:
		return fmt.Sprintf("With %d years of experience, you're just starting out! ", int(years))
	case years < 2:
		return fmt.Sprintf("With %v years of experience, that's a great start! ", years)
	case years < 5:
		return fmt.Sprintf("With %v years of experience, you're building a solid foundation! ", years)
	default:
		return fmt.Sprintf("With %v years of experience, you have significant expertise! ", years)
	}
}

// confirmationSummary lists all seven collected fields and asks for
// explicit confirmation.
func (e *Engine) confirmationSummary(state *ConversationState) string {
	var lines []string
	for _, field := range models.ProfileFields {
		value, err := state.Profile.Field(field)
		if err != nil || value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- **%s:** %s", models.FieldLabel(field), value))
	}
	return fmt.Sprintf("Alright, %s! We've gathered all your information. Does this look correct?\n\n%s\n\nPlease type 'yes' to confirm or tell me what to change.",
		state.Profile.FirstName(), strings.Join(lines, "\n"))
}

// handleDataConfirmation waits for an affirmative keyword, then generates
// the technical question set and starts the assessment. A non-affirmative
// reply re-prompts conversationally; no field re-entry mechanism exists.
func (e *Engine) handleDataConfirmation(ctx context.Context, state *ConversationState, input string) (string, error) {
	if !containsAny(input, affirmativeKeywords) {
		return fmt.Sprintf("No problem, %s! What information would you like to change?", state.Profile.FirstName()), nil
	}

	questions, err := e.gateway.GenerateQuestions(ctx, state.Profile.TechStack, state.Profile.Experience)
	if err != nil {
		slog.Warn("flow.handleDataConfirmation: question generation failed, using fallback list", "error", err)
		questions = genai.FallbackQuestions()
	}
	state.beginAssessment(questions)
	state.Phase = models.PhaseTechnicalQuestions

	return fmt.Sprintf("%s! You're familiar with %s, which is a great combination for %s. "+
		"Next, I'll ask you some technical questions to assess your skills. Please answer them one by one. "+
		"Here's your first question:\n\n**Question 1:** %s",
		state.Profile.FirstName(), state.Profile.TechStack, state.Profile.Position, state.Questions[0]), nil
}

// handleTechnicalQuestions evaluates the answer at the cursor, records it,
// and either poses the next question or concludes the assessment.
func (e *Engine) handleTechnicalQuestions(ctx context.Context, state *ConversationState, input string) (string, error) {
	if state.Cursor < 0 || state.Cursor >= len(state.Questions) {
		return "", fmt.Errorf("question cursor %d out of range for %d questions", state.Cursor, len(state.Questions))
	}

	first := state.Profile.FirstName()
	question := state.Questions[state.Cursor]
	tier := models.TierForExperience(state.Profile.Experience)

	eval, err := e.gateway.EvaluateAnswer(ctx, question, input, first, tier, state.Profile.TechStack)
	if err != nil {
		slog.Warn("flow.handleTechnicalQuestions: evaluation failed, using generic acknowledgement", "error", err)
		eval = models.Evaluation{
			Feedback:    fmt.Sprintf("Great, thank you for your response, %s!", first),
			Explanation: "Let's move on to the next question.",
		}
	}

	state.Answers[state.Cursor] = input
	state.Cursor++

	reply := fmt.Sprintf("%s\n\n%s", eval.Feedback, eval.Explanation)
	if state.Cursor < len(state.Questions) {
		reply += fmt.Sprintf("\n\n---\n\nReady for the next one, %s?\n\n**Question %d:** %s",
			first, state.Cursor+1, state.Questions[state.Cursor])
	} else {
		state.Phase = models.PhaseConclusion
		reply += fmt.Sprintf("\n\n---\n\n🎉 **Fantastic, %s!** You've completed all the technical questions! "+
			"You did really well, and I appreciate you talking through them with me. "+
			"Let me give you information about the next steps. 📋", first)
	}
	return reply, nil
}

// handleConclusion delivers the wrap-up message and ends the session.
func (e *Engine) handleConclusion(ctx context.Context, state *ConversationState) (string, error) {
	reply, err := e.gateway.FreeFormReply(ctx, state.HistoryView(), conclusionDirective)
	if err != nil {
		slog.Warn("flow.handleConclusion: free-form reply failed, using fallback", "error", err)
		reply = freeFormFallback
	}
	state.Phase = models.PhaseEnded
	return reply, nil
}

// containsAny reports whether the message contains any of the keywords,
// case-insensitively.
func containsAny(message string, keywords []string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
