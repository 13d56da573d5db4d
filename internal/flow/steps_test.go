package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/talentscout/maya/internal/models"
)

func TestStepCatalogOrder(t *testing.T) {
	if StepCount() != 7 {
		t.Fatalf("expected 7 steps, got %d", StepCount())
	}
	wantFields := models.ProfileFields
	for i := 1; i <= StepCount(); i++ {
		step, err := StepAt(i)
		if err != nil {
			t.Fatalf("StepAt(%d): %v", i, err)
		}
		if step.Index != i {
			t.Errorf("step %d has index %d", i, step.Index)
		}
		if step.Field != wantFields[i-1] {
			t.Errorf("step %d: expected field %s, got %s", i, wantFields[i-1], step.Field)
		}
		if step.Prompt == "" || step.ErrorMsg == "" {
			t.Errorf("step %d missing prompt or error message", i)
		}
	}
}

func TestStepAtOutOfRange(t *testing.T) {
	for _, i := range []int{0, -1, 8} {
		if _, err := StepAt(i); err != models.ErrInvalidStep {
			t.Errorf("StepAt(%d): expected ErrInvalidStep, got %v", i, err)
		}
	}
}

func TestValidateFullName(t *testing.T) {
	gw := newMockGateway()
	step, _ := StepAt(1)
	accept := []string{"Jane Doe", "  Jane   Doe  ", "Mary-Jane O'Connor", "Jean Claude van Damme"}
	reject := []string{"Jane", "Jane123", "Jane D0e", "", "   ", "- -"}
	for _, in := range accept {
		if !ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be accepted", in)
		}
	}
	for _, in := range reject {
		if ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be rejected", in)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	gw := newMockGateway()
	step, _ := StepAt(2)
	accept := []string{"jane@example.com", "jane.doe+tag@sub.example.co", "  jane@example.com  "}
	reject := []string{"not-an-email", "jane@", "@example.com", "jane@example", "jane doe@example.com"}
	for _, in := range accept {
		if !ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be accepted", in)
		}
	}
	for _, in := range reject {
		if ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be rejected", in)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	gw := newMockGateway()
	step, _ := StepAt(3)
	accept := []string{"4165556789", "+1 (416) 555-6789", "001-416-555-6789"}
	reject := []string{"555-6789", "call me", ""}
	for _, in := range accept {
		if !ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be accepted", in)
		}
	}
	for _, in := range reject {
		if ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be rejected", in)
		}
	}
}

func TestValidateExperience(t *testing.T) {
	gw := newMockGateway()
	step, _ := StepAt(4)
	accept := []string{"0", "2", "3.5", "50", " 12 "}
	reject := []string{"-1", "51", "3,5", "three", "1e2", ".5", ""}
	for _, in := range accept {
		if !ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be accepted", in)
		}
	}
	for _, in := range reject {
		if ValidateStep(context.Background(), gw, step, in) {
			t.Errorf("expected %q to be rejected", in)
		}
	}
}

func TestValidatePlausibilityDelegatesToGateway(t *testing.T) {
	step, _ := StepAt(5)

	gw := newMockGateway()
	gw.plausible = true
	if !ValidateStep(context.Background(), gw, step, "Software Developer") {
		t.Error("expected gateway-approved input to be accepted")
	}

	gw.plausible = false
	if ValidateStep(context.Background(), gw, step, "asdfg") {
		t.Error("expected gateway-rejected input to be rejected")
	}
}

func TestValidatePlausibilityGatewayFailureFallsBackToLength(t *testing.T) {
	for _, index := range []int{5, 6, 7} {
		step, _ := StepAt(index)
		gw := newMockGateway()
		gw.plausibleErr = errors.New("model unavailable")

		if !ValidateStep(context.Background(), gw, step, "Toronto") {
			t.Errorf("step %d: expected length fallback to accept", index)
		}
		if ValidateStep(context.Background(), gw, step, "no") {
			t.Errorf("step %d: expected length fallback to reject 2 characters", index)
		}
	}
}
