// Package flow implements the conversation core of the screening
// assistant: the data-step catalog with its validators, the session state,
// and the phase engine.
package flow

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/talentscout/maya/internal/genai"
	"github.com/talentscout/maya/internal/models"
)

// ValidatorKind selects the validation rule applied to a data step.
type ValidatorKind string

const (
	// ValidatorFullName requires at least two alphabetic name tokens.
	ValidatorFullName ValidatorKind = "full_name"
	// ValidatorEmail requires a standard local@domain.tld address.
	ValidatorEmail ValidatorKind = "email"
	// ValidatorPhone requires at least ten digits.
	ValidatorPhone ValidatorKind = "phone"
	// ValidatorExperience requires an unsigned decimal in [0, 50].
	ValidatorExperience ValidatorKind = "experience"
	// ValidatorPlausibility delegates to the model gateway, with a
	// length fallback when the gateway fails.
	ValidatorPlausibility ValidatorKind = "plausibility"
)

// DataStep describes one of the seven ordered data-collection steps.
type DataStep struct {
	Index     int
	Field     string
	Label     string // field label used in plausibility prompts
	Prompt    string
	ErrorMsg  string
	Validator ValidatorKind
}

// dataSteps is the static, ordered catalog of collection steps. Indexes
// are 1-based and processed strictly in ascending order.
var dataSteps = []DataStep{
	{
		Index:     1,
		Field:     models.FieldName,
		Label:     "Full Name",
		Prompt:    "What's your full name?",
		ErrorMsg:  "Please provide your complete full name (first and last name).",
		Validator: ValidatorFullName,
	},
	{
		Index:     2,
		Field:     models.FieldEmail,
		Label:     "Email Address",
		Prompt:    "Could you please share your email address?",
		ErrorMsg:  "Please provide a valid email address.",
		Validator: ValidatorEmail,
	},
	{
		Index:     3,
		Field:     models.FieldPhone,
		Label:     "Phone Number",
		Prompt:    "What's your phone number?",
		ErrorMsg:  "Please provide a valid phone number with at least 10 digits.",
		Validator: ValidatorPhone,
	},
	{
		Index:     4,
		Field:     models.FieldExperience,
		Label:     "Years of Experience",
		Prompt:    "How many years of professional experience do you have?",
		ErrorMsg:  "Please provide your experience in years (e.g., 2, 3.5, 0 for fresher).",
		Validator: ValidatorExperience,
	},
	{
		Index:     5,
		Field:     models.FieldPosition,
		Label:     "Job Position",
		Prompt:    "What position are you interested in applying for?",
		ErrorMsg:  "Please provide a valid and clear job position.",
		Validator: ValidatorPlausibility,
	},
	{
		Index:     6,
		Field:     models.FieldLocation,
		Label:     "Work Location",
		Prompt:    "What's your preferred work location? (or are you open to remote work?)",
		ErrorMsg:  "Please provide a valid location or specify 'remote'.",
		Validator: ValidatorPlausibility,
	},
	{
		Index:     7,
		Field:     models.FieldTechStack,
		Label:     "Technology Stack",
		Prompt:    "What programming languages, frameworks, and technologies are you proficient in?",
		ErrorMsg:  "Please list the technical skills you are proficient in.",
		Validator: ValidatorPlausibility,
	},
}

// StepCount returns the number of data-collection steps.
func StepCount() int {
	return len(dataSteps)
}

// StepAt returns the data step with the given 1-based index.
func StepAt(index int) (DataStep, error) {
	if index < 1 || index > len(dataSteps) {
		return DataStep{}, models.ErrInvalidStep
	}
	return dataSteps[index-1], nil
}

var (
	emailRegexp      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	experienceRegexp = regexp.MustCompile(`^\d+(\.\d+)?$`)
	nonDigitRegexp   = regexp.MustCompile(`[^0-9]`)
)

// MaxExperienceYears caps the accepted years-of-experience value.
const MaxExperienceYears = 50

// minPlausibleLength is the gateway-failure fallback threshold for
// plausibility-checked fields.
const minPlausibleLength = 2

// ValidateStep checks raw input against the step's rule. Plausibility
// steps consult the gateway; a gateway failure resolves to the length
// fallback, never to an error.
func ValidateStep(ctx context.Context, gateway genai.ClientInterface, step DataStep, input string) bool {
	switch step.Validator {
	case ValidatorFullName:
		return validFullName(input)
	case ValidatorEmail:
		return emailRegexp.MatchString(strings.TrimSpace(input))
	case ValidatorPhone:
		return len(nonDigitRegexp.ReplaceAllString(input, "")) >= 10
	case ValidatorExperience:
		return validExperience(input)
	case ValidatorPlausibility:
		ok, err := gateway.PlausibilityCheck(ctx, input, step.Label)
		if err != nil {
			slog.Warn("flow.ValidateStep: plausibility check failed, using length fallback", "field", step.Field, "error", err)
			return len(input) > minPlausibleLength
		}
		return ok
	default:
		slog.Error("flow.ValidateStep: unknown validator kind", "validator", step.Validator, "field", step.Field)
		return false
	}
}

// validFullName accepts at least two whitespace-separated tokens where
// every token, after stripping hyphens and apostrophes, is alphabetic.
func validFullName(input string) bool {
	tokens := strings.Fields(strings.TrimSpace(input))
	if len(tokens) < 2 {
		return false
	}
	for _, token := range tokens {
		stripped := strings.NewReplacer("-", "", "'", "").Replace(token)
		if stripped == "" {
			return false
		}
		for _, r := range stripped {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// validExperience accepts an unsigned decimal number in [0, MaxExperienceYears].
func validExperience(input string) bool {
	trimmed := strings.TrimSpace(input)
	if !experienceRegexp.MatchString(trimmed) {
		return false
	}
	years, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return false
	}
	return years >= 0 && years <= MaxExperienceYears
}
