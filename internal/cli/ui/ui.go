// Package ui holds the demobundle terminal look: styles, status symbols,
// TTY detection, and the step spinner used while the pipeline runs.
package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// BrandEmoji prefixes headers.
const BrandEmoji = "\U0001F4E6" // 📦

// ANSI 4-bit colors; lipgloss degrades them when the terminal can't.
var (
	ColorCyan   = lipgloss.Color("6")
	ColorGreen  = lipgloss.Color("2")
	ColorYellow = lipgloss.Color("3")
	ColorRed    = lipgloss.Color("1")
)

var (
	StyleBold     = lipgloss.NewStyle().Bold(true)
	StyleDim      = lipgloss.NewStyle().Faint(true)
	StyleBoldCyan = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	StyleBoldRed  = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(ColorRed)

	StyleHint = lipgloss.NewStyle().Faint(true)
)

const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolArrow   = "→"
)

var (
	forcedRenderer     *lipgloss.Renderer
	forcedRendererOnce sync.Once
)

// ForcedRenderer returns a renderer that always emits ANSI codes. The default
// renderer strips them when stderr is not a TTY; callers that already decided
// color is wanted use this one instead.
func ForcedRenderer() *lipgloss.Renderer {
	forcedRendererOnce.Do(func() {
		forcedRenderer = lipgloss.NewRenderer(os.Stderr)
		forcedRenderer.SetColorProfile(termenv.ANSI)
	})
	return forcedRenderer
}

// StderrIsTTY reports whether stderr is an interactive terminal.
func StderrIsTTY() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorEnabled reports whether stderr should get color.
// NO_COLOR (https://no-color.org/) wins even when set to "".
func ColorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return StderrIsTTY()
}

// Paint renders text with style through the forced renderer when color is
// true and returns it untouched otherwise.
func Paint(style lipgloss.Style, text string, color bool) string {
	if !color {
		return text
	}
	return ForcedRenderer().NewStyle().Inherit(style).Render(text)
}
