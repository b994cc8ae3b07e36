// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal. Interactive prompts are
// only possible when it is.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ColorEnabled reports whether output should use color, honoring
// NO_COLOR and piped output.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !IsStdoutTTY() {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// =============================================================================
// TERMINAL WIDTH
// =============================================================================

// DefaultTerminalWidth is the fallback width when detection fails.
const DefaultTerminalWidth = 80

// TerminalWidth returns the current terminal width, or the default
// when it cannot be determined.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return width
}

// ReadPassword reads a line from stdin with echo disabled.
func ReadPassword() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

var output = termenv.NewOutput(os.Stdout)

// Success prints a green line when color is enabled.
func Success(text string) {
	if ColorEnabled() {
		text = output.String("✓ " + text).Foreground(output.Color("2")).String()
	}
	os.Stdout.WriteString(text + "\n")
}

// Fail prints a red line to stderr.
func Fail(text string) {
	if ColorEnabled() {
		text = output.String("✗ " + text).Foreground(output.Color("1")).String()
	}
	os.Stderr.WriteString(text + "\n")
}

// Muted prints a dim line.
func Muted(text string) {
	if ColorEnabled() {
		text = output.String(text).Faint().String()
	}
	os.Stdout.WriteString(text + "\n")
}
