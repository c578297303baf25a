package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorOn     = 114 // green
	colorOff    = 203 // red
	colorWarn   = 215 // orange
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderWarning returns s in the warning (orange) color.
func RenderWarning(s string) string { return paint(colorWarn, s) }

// RenderFlag renders a flag state as a colored "on" or "off".
func RenderFlag(v bool) string {
	if v {
		return paint(colorOn, "on")
	}
	return paint(colorOff, "off")
}

// RenderToggle renders a toggle row: a check box, the title and the state.
func RenderToggle(title string, v bool) string {
	box := "[ ]"
	if v {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s  %s", RenderAccent(box), title, RenderFlag(v))
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
