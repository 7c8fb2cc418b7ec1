package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatErrorBasicMessage(t *testing.T) {
	out := FormatError("demo list missing")
	if !strings.Contains(out, "Error:") {
		t.Error("expected 'Error:' prefix")
	}
	if !strings.Contains(out, "demo list missing") {
		t.Error("expected message in output")
	}
	if strings.Contains(out, "Try:") {
		t.Error("should not contain 'Try:' when no suggestions")
	}
}

func TestFormatErrorWithSuggestions(t *testing.T) {
	out := FormatError("missing requirement",
		"demobundle build --primary-requirement pkg==1.0",
		"export DEMOBUNDLE_PRIMARY_REQUIREMENT=pkg==1.0",
	)
	if !strings.Contains(out, "Try:") {
		t.Error("expected 'Try:' section")
	}
	if !strings.Contains(out, "--primary-requirement pkg==1.0") {
		t.Error("expected first suggestion")
	}
	if !strings.Contains(out, "DEMOBUNDLE_PRIMARY_REQUIREMENT") {
		t.Error("expected second suggestion")
	}
	if strings.Count(out, SymbolArrow) != 2 {
		t.Errorf("expected one arrow per suggestion, got %d", strings.Count(out, SymbolArrow))
	}
}

func TestStepSpinnerNoSpin(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)

	sp.Start("Loading demo list...")
	sp.Done()
	sp.Start("Copying 2 demos...")
	sp.Fail()

	out := buf.String()
	if !strings.Contains(out, "Loading demo list...") || !strings.Contains(out, "Copying 2 demos...") {
		t.Errorf("expected both step messages, got %q", out)
	}
	if strings.Count(out, SymbolCheck) != 1 {
		t.Errorf("expected 1 check mark, got %q", out)
	}
	if strings.Count(out, SymbolCross) != 1 {
		t.Errorf("expected 1 cross, got %q", out)
	}
}

func TestStepSpinnerFinishWithoutStartPrintsNothing(t *testing.T) {
	for _, noSpin := range []bool{true, false} {
		var buf bytes.Buffer
		sp := NewStepSpinner(&buf, noSpin)
		sp.Done()
		sp.Fail()
		if buf.Len() != 0 {
			t.Errorf("noSpin=%v: expected no output, got %q", noSpin, buf.String())
		}
	}
}

func TestStepSpinnerFinishesStepOnce(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)
	sp.Start("Writing manifest...")
	sp.Done()
	sp.Fail()
	if strings.Count(buf.String(), SymbolCross) != 0 {
		t.Errorf("a finished step must not be marked again, got %q", buf.String())
	}
}

func TestColorEnabledRespectsNO_COLOR(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	// Presence alone disables color.
	if ColorEnabled() {
		t.Error("ColorEnabled should return false when NO_COLOR is set")
	}
}

func TestForcedRendererSingleton(t *testing.T) {
	if ForcedRenderer() != ForcedRenderer() {
		t.Error("ForcedRenderer should return the same instance")
	}
}

func TestPaint(t *testing.T) {
	if got := Paint(StyleBold, "bundle", false); got != "bundle" {
		t.Errorf("Paint without color = %q, want plain text", got)
	}
	got := Paint(StyleBold, "bundle", true)
	if !strings.Contains(got, "bundle") {
		t.Errorf("Paint lost the text: %q", got)
	}
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("Paint with color should emit ANSI codes, got %q", got)
	}
}
