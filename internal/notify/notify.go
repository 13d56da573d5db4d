// Package notify sends the post-screen follow-up SMS to candidates via
// the Twilio API.
//
// Notification is optional: it is only wired when credentials are
// configured, and failures are logged rather than surfaced into the
// conversation.
package notify

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// minPhoneDigits is the minimum digit count for a canonical recipient.
const minPhoneDigits = 6

var phoneNumberRegexp = regexp.MustCompile(`[^0-9]`)

// Notifier delivers a follow-up message to a candidate's phone number.
type Notifier interface {
	SendFollowUp(to, body string) error
}

// messageCreator is the minimal Twilio surface used by the notifier.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Opts holds Twilio configuration.
type Opts struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Option configures the Twilio notifier.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromNumber sets the sending phone number.
func WithFromNumber(from string) Option {
	return func(o *Opts) { o.From = from }
}

// TwilioNotifier sends SMS follow-ups through the Twilio REST API.
type TwilioNotifier struct {
	api  messageCreator
	from string
}

// NewTwilioNotifier creates a notifier. Credentials fall back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, and TWILIO_FROM_NUMBER
// environment variables.
func NewTwilioNotifier(opts ...Option) (*TwilioNotifier, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("notify.NewTwilioNotifier: config loaded",
		"accountSID_set", cfg.AccountSID != "",
		"authToken_set", cfg.AuthToken != "",
		"from_set", cfg.From != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioNotifier{api: client.Api, from: cfg.From}, nil
}

// CanonicalizeRecipient strips all non-digit characters and validates the
// result has enough digits to be a deliverable number.
func CanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegexp.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < minPhoneDigits {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum %d digits required)", canonical, minPhoneDigits)
	}
	return canonical, nil
}

// SendFollowUp sends an SMS to the candidate.
func (n *TwilioNotifier) SendFollowUp(to, body string) error {
	canonical, err := CanonicalizeRecipient(to)
	if err != nil {
		slog.Error("notify.SendFollowUp: invalid recipient", "error", err)
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + canonical)
	params.SetFrom(n.from)
	params.SetBody(body)

	if _, err := n.api.CreateMessage(params); err != nil {
		slog.Error("notify.SendFollowUp: Twilio send failed", "error", err)
		return fmt.Errorf("failed to send follow-up SMS: %w", err)
	}
	slog.Info("notify.SendFollowUp: follow-up SMS sent")
	return nil
}

// FollowUpMessage builds the standard next-steps SMS body.
func FollowUpMessage(firstName string) string {
	return fmt.Sprintf("Hi %s, thanks for completing your TalentScout screening with Maya! "+
		"Our team will review your answers and get back to you within 2-3 business days. Good luck!", firstName)
}
