// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toasts in the corner of the screen. Unlike modal error
// dialogs, toasts auto-dismiss and never steal input focus, so a
// failed vote or send never interrupts reading.
package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind is the severity of a toast notification.
type ToastKind int

const (
	// ToastStatus is an informational toast
	ToastStatus ToastKind = iota
	// ToastError is an error toast
	ToastError
	// ToastSuccess is a success toast
	ToastSuccess
)

// StatusToastDuration is the auto-dismiss duration for status toasts.
const StatusToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts
// (longer to read).
const ErrorToastDuration = 8 * time.Second

var toastCounter atomic.Int64

// Toast is one notification.
type Toast struct {
	ID       int64
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

// ToastExpiredMsg dismisses a toast by ID.
type ToastExpiredMsg struct{ ID int64 }

// =============================================================================
// TOAST STACK
// =============================================================================

// Toasts holds the active toast stack, newest last.
type Toasts struct {
	theme  *styles.Theme
	active []Toast
}

// NewToasts creates an empty toast stack.
func NewToasts(theme *styles.Theme) *Toasts {
	return &Toasts{theme: theme}
}

// Push adds a toast and returns the command that expires it.
func (t *Toasts) Push(kind ToastKind, message string) tea.Cmd {
	toast := Toast{
		ID:      toastCounter.Add(1),
		Message: message,
		Kind:    kind,
		Duration: func() time.Duration {
			if kind == ToastError {
				return ErrorToastDuration
			}
			return StatusToastDuration
		}(),
	}
	t.active = append(t.active, toast)
	id := toast.ID
	return tea.Tick(toast.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Error pushes an error toast.
func (t *Toasts) Error(message string) tea.Cmd { return t.Push(ToastError, message) }

// Success pushes a success toast.
func (t *Toasts) Success(message string) tea.Cmd { return t.Push(ToastSuccess, message) }

// Expire removes the toast named by msg.
func (t *Toasts) Expire(msg ToastExpiredMsg) {
	for i, toast := range t.active {
		if toast.ID == msg.ID {
			t.active = append(t.active[:i], t.active[i+1:]...)
			return
		}
	}
}

// Len returns the number of active toasts.
func (t *Toasts) Len() int { return len(t.active) }

// View renders the stack, one toast per line.
func (t *Toasts) View() string {
	if len(t.active) == 0 {
		return ""
	}
	var lines []string
	for _, toast := range t.active {
		var style lipgloss.Style
		switch toast.Kind {
		case ToastError:
			style = t.theme.ErrorText
		case ToastSuccess:
			style = t.theme.SuccessText
		default:
			style = t.theme.MutedText
		}
		lines = append(lines, style.Render("• "+toast.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}
