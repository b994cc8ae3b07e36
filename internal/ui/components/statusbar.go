// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides shared UI components for the talk TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is one key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom bar: identity on the left, unread
// badge and key hints on the right.
type StatusBar struct {
	theme *styles.Theme
	width int

	identity  string
	unread    int
	shortcuts []Shortcut
	message   string
	isError   bool
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// SetWidth sets the render width.
func (s *StatusBar) SetWidth(w int) { s.width = w }

// SetIdentity sets the signed-in identity label (empty when signed out).
func (s *StatusBar) SetIdentity(id string) { s.identity = id }

// SetUnread sets the unread notification count.
func (s *StatusBar) SetUnread(n int) { s.unread = n }

// SetShortcuts replaces the key hints for the active view.
func (s *StatusBar) SetShortcuts(shortcuts []Shortcut) { s.shortcuts = shortcuts }

// Flash shows a transient message in place of the shortcuts.
func (s *StatusBar) Flash(msg string, isError bool) {
	s.message = msg
	s.isError = isError
}

// ClearFlash removes the transient message.
func (s *StatusBar) ClearFlash() { s.message = "" }

// View renders the bar.
func (s *StatusBar) View() string {
	left := s.identity
	if left == "" {
		left = "not signed in"
	}
	if s.unread > 0 {
		left += "  " + s.theme.UnreadBadge.Render(fmt.Sprintf("%d", s.unread))
	}

	var right string
	switch {
	case s.message != "" && s.isError:
		right = s.theme.ErrorText.Render(s.message)
	case s.message != "":
		right = s.theme.SuccessText.Render(s.message)
	default:
		var hints []string
		for _, sc := range s.shortcuts {
			hints = append(hints,
				s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
		}
		right = strings.Join(hints, "  ")
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Too narrow for hints; identity wins.
		right = ""
		gap = 1
	}
	return s.theme.StatusBar.Width(s.width).
		Render(left + strings.Repeat(" ", gap) + right)
}
