// Package genai provides the model gateway for the screening assistant,
// backed by the OpenAI API.
//
// It exposes the four capabilities the conversation engine needs:
// plausibility checks, technical question generation, answer evaluation,
// and free-form persona replies. Every call returns an explicit error so
// the caller can apply its documented fallback; nothing in this package
// panics or stalls on a misbehaving model.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/talentscout/maya/internal/models"
)

// QuestionCount is the fixed number of technical questions per session.
const QuestionCount = 5

// Error variables for better error handling and testability
var (
	ErrNoChoicesReturned = errors.New("no choices returned")
	ErrQuestionParse     = errors.New("response did not parse into exactly 5 numbered questions")
	ErrEvaluationParse   = errors.New("evaluation response is not valid JSON")
)

// ClientInterface defines the model gateway capabilities consumed by the
// conversation engine. Implementations must be safe to call once per turn.
type ClientInterface interface {
	// PlausibilityCheck asks whether text is a realistic value for the
	// given field label.
	PlausibilityCheck(ctx context.Context, text, fieldLabel string) (bool, error)

	// GenerateQuestions derives an experience tier and requests exactly
	// five conceptual technical questions for the tech stack.
	GenerateQuestions(ctx context.Context, techStack, experience string) ([]string, error)

	// EvaluateAnswer scores a technical answer and returns personalized
	// feedback plus a correct-answer explanation.
	EvaluateAnswer(ctx context.Context, question, answer, firstName string, tier models.ExperienceTier, techStack string) (models.Evaluation, error)

	// FreeFormReply produces an in-character reply for phases without
	// structured fields, given a read-only view of the history.
	FreeFormReply(ctx context.Context, history []models.Message, directive string) (string, error)
}

// chatService defines the minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model used for all calls.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout bounds each individual gateway call.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// DefaultTimeout bounds a single gateway round trip.
const DefaultTimeout = 30 * time.Second

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat    chatService
	model   openai.ChatModel
	timeout time.Duration
}

// NewClient initializes a new GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	slog.Debug("genai.NewClient: client configured", "model", cfg.Model, "timeout", cfg.Timeout)

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{
		chat:    &cli.Chat.Completions,
		model:   openai.ChatModel(cfg.Model),
		timeout: cfg.Timeout,
	}, nil
}

// complete runs a single bounded chat completion and returns the first
// choice's content.
func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params.Model = c.model
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// PlausibilityCheck asks the model for a strict yes/no verdict on whether
// text is a realistic value for fieldLabel.
func (c *Client) PlausibilityCheck(ctx context.Context, text, fieldLabel string) (bool, error) {
	slog.Debug("genai.PlausibilityCheck: checking input", "fieldLabel", fieldLabel, "length", len(text))

	systemPrompt := fmt.Sprintf(`You are a strict data validation assistant. A user has provided the following input for a '%s' field: %q.
Is this a plausible, real-world '%s'? The input should not be gibberish or nonsensical like 'asdfg' or 'gskgjk'.
Respond with only a single word: 'yes' or 'no'.`, fieldLabel, text, fieldLabel)

	verdict, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)},
		MaxTokens:   openai.Int(5),
		Temperature: openai.Float(0.0),
	})
	if err != nil {
		slog.Warn("genai.PlausibilityCheck: call failed", "fieldLabel", fieldLabel, "error", err)
		return false, err
	}

	ok := strings.Contains(strings.ToLower(strings.TrimSpace(verdict)), "yes")
	slog.Debug("genai.PlausibilityCheck: verdict received", "fieldLabel", fieldLabel, "plausible", ok)
	return ok, nil
}

var numberedLineRegexp = regexp.MustCompile(`^\d+\.`)

// GenerateQuestions requests exactly five conceptual technical questions
// calibrated to the candidate's experience tier.
func (c *Client) GenerateQuestions(ctx context.Context, techStack, experience string) ([]string, error) {
	tier := models.TierForExperience(experience)
	slog.Debug("genai.GenerateQuestions: requesting questions", "tier", tier, "techStack", techStack)

	systemPrompt := fmt.Sprintf("Generate exactly %d technical questions for a %s candidate with expertise in: %s. "+
		"Focus on conceptual understanding, design patterns, best practices, and problem-solving. "+
		"Avoid questions that would require generating multi-line code snippets as an answer. Format as a numbered list.",
		QuestionCount, tier, techStack)

	content, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)},
		MaxTokens:   openai.Int(600),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		slog.Warn("genai.GenerateQuestions: call failed", "error", err)
		return nil, err
	}

	questions := ParseNumberedQuestions(content)
	if len(questions) != QuestionCount {
		slog.Warn("genai.GenerateQuestions: unexpected question count", "parsed", len(questions))
		return nil, ErrQuestionParse
	}
	slog.Debug("genai.GenerateQuestions: questions generated", "count", len(questions))
	return questions, nil
}

// ParseNumberedQuestions extracts question texts from a numbered-list
// response, up to QuestionCount entries.
func ParseNumberedQuestions(content string) []string {
	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !numberedLineRegexp.MatchString(line) {
			continue
		}
		_, text, found := strings.Cut(line, ".")
		if !found {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		questions = append(questions, text)
		if len(questions) == QuestionCount {
			break
		}
	}
	return questions
}

// FallbackQuestions returns the fixed generic question list used when
// generation fails. Always exactly QuestionCount entries.
func FallbackQuestions() []string {
	return []string{
		"Tell me about a challenging project you've worked on.",
		"How do you approach debugging?",
		"What coding best practices do you follow?",
		"How do you stay updated with new technologies?",
		"Describe your experience with version control.",
	}
}

// EvaluateAnswer scores a technical answer and returns encouraging
// feedback plus the correct-answer explanation as a strict JSON object.
// Malformed model output is reported as ErrEvaluationParse.
func (c *Client) EvaluateAnswer(ctx context.Context, question, answer, firstName string, tier models.ExperienceTier, techStack string) (models.Evaluation, error) {
	slog.Debug("genai.EvaluateAnswer: evaluating answer", "firstName", firstName, "tier", tier)

	systemPrompt := fmt.Sprintf(`You are an expert technical interviewer. Your goal is to be encouraging, conversational, and educational. You will receive a technical question and a user's answer from %[1]s, who is a %[2]s candidate in %[3]s.
**Question:** %[4]q
**%[1]s's Answer:** %[5]q
Your task is to perform the following steps and return a single, valid JSON object:
1. Analyze %[1]s's answer. Determine if it's correct, partially correct, incorrect, or if they indicated they don't know (e.g., "skip", "idk", "I don't know", "next").
2. Write a short, friendly, and encouraging sentence of feedback for %[1]s, using their name. If they knew the answer, acknowledge their knowledge. If they were partially correct, praise their effort. If they were incorrect but tried, be encouraging about the learning opportunity. If they skipped, acknowledge the choice politely.
3. Write a clear, concise, and comprehensive explanation of the correct answer to the original question, starting with a heading like "Here's a breakdown:".
Return a valid JSON object with the following structure, and nothing else:
{"feedback": "Your friendly feedback sentence here, using the candidate's name.", "explanation": "Your comprehensive correct answer here."}`,
		firstName, tier, techStack, question, answer)

	content, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)},
		MaxTokens:   openai.Int(500),
		Temperature: openai.Float(0.7),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		slog.Warn("genai.EvaluateAnswer: call failed", "error", err)
		return models.Evaluation{}, err
	}

	var eval models.Evaluation
	if err := json.Unmarshal([]byte(content), &eval); err != nil {
		slog.Warn("genai.EvaluateAnswer: malformed JSON from model", "error", err)
		return models.Evaluation{}, ErrEvaluationParse
	}
	if eval.Feedback == "" || eval.Explanation == "" {
		slog.Warn("genai.EvaluateAnswer: evaluation missing fields")
		return models.Evaluation{}, ErrEvaluationParse
	}
	slog.Debug("genai.EvaluateAnswer: evaluation received")
	return eval, nil
}

// FreeFormReply generates an in-character reply for phases without
// structured fields, given the conversation so far and a phase directive.
func (c *Client) FreeFormReply(ctx context.Context, history []models.Message, directive string) (string, error) {
	slog.Debug("genai.FreeFormReply: generating reply", "historyLength", len(history))

	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(directive)}
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	reply, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		MaxTokens:   openai.Int(400),
		Temperature: openai.Float(0.8),
	})
	if err != nil {
		slog.Warn("genai.FreeFormReply: call failed", "error", err)
		return "", err
	}
	return reply, nil
}
