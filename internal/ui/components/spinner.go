// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

// Loader wraps the bubbles spinner with a label, shown while a view
// waits on the backend.
type Loader struct {
	spinner spinner.Model
	label   string
	active  bool
}

// NewLoader creates an idle loader.
func NewLoader(theme *styles.Theme) *Loader {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Spinner
	return &Loader{spinner: s}
}

// Start activates the loader with a label and returns its tick command.
func (l *Loader) Start(label string) tea.Cmd {
	l.label = label
	l.active = true
	return l.spinner.Tick
}

// Stop deactivates the loader.
func (l *Loader) Stop() { l.active = false }

// Active reports whether the loader is spinning.
func (l *Loader) Active() bool { return l.active }

// Update advances the spinner animation.
func (l *Loader) Update(msg tea.Msg) tea.Cmd {
	if !l.active {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the spinner and label, or nothing while idle.
func (l *Loader) View() string {
	if !l.active {
		return ""
	}
	return l.spinner.View() + " " + l.label
}
