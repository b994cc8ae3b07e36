// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notices implements the notifications view.
package notices

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

// timeNow is stubbed in tests.
var timeNow = time.Now

// =============================================================================
// MESSAGES
// =============================================================================

// ErrMsg surfaces a background failure.
type ErrMsg struct{ Err error }

// OpenPostMsg asks the app to jump to the post a notification points at.
type OpenPostMsg struct{ PostID int }

// UnreadChangedMsg tells the app the unread badge count changed.
type UnreadChangedMsg struct{ Unread int }

type loadedMsg struct {
	notifications []model.Notification
	err           error
}

type markedMsg struct{ err error }

// =============================================================================
// MODEL
// =============================================================================

// Model is the notifications view state.
type Model struct {
	client *api.Client
	theme  *styles.Theme

	notifications []model.Notification
	cursor        int
	loading       bool
	width         int
	height        int
}

// New creates the notifications view.
func New(client *api.Client, theme *styles.Theme) *Model {
	return &Model{client: client, theme: theme}
}

// SetSize stores the available render size.
func (m *Model) SetSize(w, h int) { m.width, m.height = w, h }

// Init loads notifications.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		notifications, err := m.client.Notifications(context.Background())
		return loadedMsg{notifications: notifications, err: err}
	}
}

// Update handles messages for the notifications view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.notifications = msg.notifications
		if m.cursor >= len(m.notifications) {
			m.cursor = 0
		}
		unread := model.CountUnread(m.notifications)
		return m, func() tea.Msg { return UnreadChangedMsg{Unread: unread} }

	case markedMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		return m, m.fetch()

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.notifications)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m, m.fetch()
		case "m":
			return m, m.markSelected()
		case "M":
			return m, func() tea.Msg {
				err := m.client.MarkAllNotificationsRead(context.Background())
				return markedMsg{err: err}
			}
		case "enter":
			return m, m.openSelected()
		}
	}
	return m, nil
}

func (m *Model) markSelected() tea.Cmd {
	if m.cursor >= len(m.notifications) {
		return nil
	}
	n := m.notifications[m.cursor]
	if n.IsRead {
		return nil
	}
	return func() tea.Msg {
		err := m.client.MarkNotificationRead(context.Background(), n.ID)
		return markedMsg{err: err}
	}
}

// openSelected marks the notification read and jumps to its post.
func (m *Model) openSelected() tea.Cmd {
	if m.cursor >= len(m.notifications) {
		return nil
	}
	n := m.notifications[m.cursor]
	cmds := []tea.Cmd{}
	if !n.IsRead {
		cmds = append(cmds, func() tea.Msg {
			err := m.client.MarkNotificationRead(context.Background(), n.ID)
			return markedMsg{err: err}
		})
	}
	if n.PostID != 0 {
		postID := n.PostID
		cmds = append(cmds, func() tea.Msg { return OpenPostMsg{PostID: postID} })
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the notification list.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("Notifications"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.theme.MutedText.Render("loading notifications..."))
	case len(m.notifications) == 0:
		b.WriteString(m.theme.MutedText.Render("nothing yet"))
	default:
		for i, n := range m.notifications {
			marker := "●"
			style := m.theme.ListTitle
			if n.IsRead {
				marker = "○"
				style = m.theme.MutedText
			}
			line := style.Render(marker+" "+n.Message) + "  " +
				m.theme.Timestamp.Render(model.TimeAgo(n.CreatedAt, timeNow()))
			if i == m.cursor {
				b.WriteString(m.theme.ListSelected.String() + line)
			} else {
				b.WriteString(m.theme.ListItem.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.theme.MutedText.Render("m mark read  M mark all  enter open post"))
	}
	return b.String()
}
