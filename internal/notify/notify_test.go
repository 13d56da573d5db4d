package notify

import (
	"errors"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type mockMessageCreator struct {
	lastParams *twilioApi.CreateMessageParams
	err        error
	calls      int
}

func (m *mockMessageCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	m.calls++
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	return &twilioApi.ApiV2010Message{}, nil
}

func TestNewTwilioNotifierMissingCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
	if _, err := NewTwilioNotifier(); err == nil {
		t.Error("expected error with no credentials")
	}
	if _, err := NewTwilioNotifier(WithAccountSID("AC123"), WithAuthToken("tok")); err == nil {
		t.Error("expected error with no from number")
	}
}

func TestCanonicalizeRecipient(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+1 (416) 555-6789", "14165556789", false},
		{"4165556789", "4165556789", false},
		{"", "", true},
		{"abc", "", true},
		{"12345", "", true},
	}
	for _, c := range cases {
		got, err := CanonicalizeRecipient(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("CanonicalizeRecipient(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("CanonicalizeRecipient(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("CanonicalizeRecipient(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSendFollowUpSetsParams(t *testing.T) {
	mock := &mockMessageCreator{}
	n := &TwilioNotifier{api: mock, from: "+15550001111"}

	if err := n.SendFollowUp("+1 (416) 555-6789", "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 API call, got %d", mock.calls)
	}
	p := mock.lastParams
	if p.To == nil || *p.To != "+14165556789" {
		t.Errorf("unexpected To: %v", p.To)
	}
	if p.From == nil || *p.From != "+15550001111" {
		t.Errorf("unexpected From: %v", p.From)
	}
	if p.Body == nil || *p.Body != "hello" {
		t.Errorf("unexpected Body: %v", p.Body)
	}
}

func TestSendFollowUpInvalidRecipient(t *testing.T) {
	mock := &mockMessageCreator{}
	n := &TwilioNotifier{api: mock, from: "+15550001111"}

	if err := n.SendFollowUp("not-a-number", "hello"); err == nil {
		t.Error("expected error for invalid recipient")
	}
	if mock.calls != 0 {
		t.Errorf("API should not be called for invalid recipient, got %d calls", mock.calls)
	}
}

func TestSendFollowUpAPIFailure(t *testing.T) {
	mock := &mockMessageCreator{err: errors.New("twilio down")}
	n := &TwilioNotifier{api: mock, from: "+15550001111"}

	err := n.SendFollowUp("4165556789", "hello")
	if err == nil {
		t.Fatal("expected error when API fails")
	}
	if !strings.Contains(err.Error(), "twilio down") {
		t.Errorf("expected wrapped API error, got %v", err)
	}
}

func TestFollowUpMessageIncludesName(t *testing.T) {
	msg := FollowUpMessage("Jane")
	if !strings.Contains(msg, "Jane") {
		t.Errorf("expected name in message: %q", msg)
	}
	if !strings.Contains(msg, "TalentScout") {
		t.Errorf("expected company in message: %q", msg)
	}
}
