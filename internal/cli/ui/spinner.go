package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// StepSpinner shows progress for sequential steps. On a TTY it animates a
// braille spinner; otherwise it prints plain lines so CI logs stay readable.
type StepSpinner struct {
	w      io.Writer
	s      *spinner.Spinner
	msg    string
	active bool
	noSpin bool
}

// NewStepSpinner creates a spinner writing to w. noSpin disables animation.
func NewStepSpinner(w io.Writer, noSpin bool) *StepSpinner {
	return &StepSpinner{w: w, noSpin: noSpin}
}

// Start begins a step.
func (ss *StepSpinner) Start(msg string) {
	ss.msg = msg
	if ss.noSpin {
		fmt.Fprintf(ss.w, "  %s", msg)
		return
	}
	ss.s = spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(ss.w))
	ss.s.Prefix = "  "
	ss.s.Suffix = " " + msg
	ss.s.Start()
	ss.active = true
}

// Done ends the current step with a check mark.
func (ss *StepSpinner) Done() { ss.finish(StyleSuccess.Render(SymbolCheck)) }

// Fail ends the current step with a cross.
func (ss *StepSpinner) Fail() { ss.finish(StyleError.Render(SymbolCross)) }

// finish stops the animation and prints the step's final line. A step that
// was never started prints nothing.
func (ss *StepSpinner) finish(mark string) {
	if ss.msg == "" {
		return
	}
	if ss.noSpin {
		fmt.Fprintf(ss.w, " %s\n", mark)
	} else {
		if ss.active {
			ss.s.Stop()
			ss.active = false
		}
		fmt.Fprintf(ss.w, "\r  %s %s\n", ss.msg, mark)
	}
	ss.msg = ""
}
