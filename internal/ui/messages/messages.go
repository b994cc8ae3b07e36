// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package messages implements the direct-message view: the
// conversation list, an open thread, and starting new conversations
// from a user search.
package messages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
	"github.com/jeranaias/talk-tui/internal/util"
)

// DefaultRefreshInterval refreshes the open conversation every five
// seconds.
const DefaultRefreshInterval = 5 * time.Second

// timeNow is stubbed in tests.
var timeNow = time.Now

// =============================================================================
// MESSAGES
// =============================================================================

// ErrMsg surfaces a background failure.
type ErrMsg struct{ Err error }

type listMsg struct {
	conversations []model.Conversation
	err           error
}

type threadMsg struct {
	generation   int
	conversation *model.Conversation
	err          error
}

type sentMsg struct{ err error }

// refreshTickMsg drives the periodic refresh of the open conversation.
// The generation guards against stale ticks after the thread closes.
type refreshTickMsg struct{ generation int }

type searchMsg struct {
	users []model.User
	err   error
}

// =============================================================================
// MODEL
// =============================================================================

type pane int

const (
	paneList pane = iota
	paneThread
	paneSearch
)

// Model is the direct-message view state.
type Model struct {
	client   *api.Client
	theme    *styles.Theme
	interval time.Duration

	pane          pane
	conversations []model.Conversation
	cursor        int

	open *model.Conversation

	input  textinput.Model
	search textinput.Model

	results      []model.User
	resultCursor int

	generation int
	polling    bool
	loading    bool
	width      int
	height     int
}

// New creates the messages view.
func New(client *api.Client, theme *styles.Theme, interval time.Duration) *Model {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	input := textinput.New()
	input.Placeholder = "write a message"
	input.CharLimit = 2000

	search := textinput.New()
	search.Placeholder = "search people by name or email"
	search.CharLimit = 120

	return &Model{client: client, theme: theme, interval: interval, input: input, search: search}
}

// SetSize stores the available render size.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.input.Width = w - 8
	m.search.Width = w - 8
}

// Init loads the conversation list.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.fetchList()
}

// Close stops the thread refresh loop when the app switches away from
// this view.
func (m *Model) Close() {
	m.generation++
	m.polling = false
	m.pane = paneList
	m.open = nil
	m.input.Blur()
}

func (m *Model) fetchList() tea.Cmd {
	return func() tea.Msg {
		conversations, err := m.client.Conversations(context.Background())
		return listMsg{conversations: conversations, err: err}
	}
}

func (m *Model) fetchThread(id int) tea.Cmd {
	generation := m.generation
	return func() tea.Msg {
		conversation, err := m.client.Conversation(context.Background(), id)
		return threadMsg{generation: generation, conversation: conversation, err: err}
	}
}

func (m *Model) refreshTick() tea.Cmd {
	generation := m.generation
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{generation: generation}
	})
}

// Update handles messages for the DM view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listMsg:
		m.loading = false
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.conversations = msg.conversations
		if m.cursor >= len(m.conversations) {
			m.cursor = 0
		}
		return m, nil

	case threadMsg:
		if msg.generation != m.generation {
			// Stale fetch for a thread we already left
			return m, nil
		}
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.open = msg.conversation
		m.pane = paneThread
		m.input.Focus()
		if !m.polling {
			m.polling = true
			return m, tea.Batch(textinput.Blink, m.refreshTick())
		}
		return m, nil

	case refreshTickMsg:
		if msg.generation != m.generation || m.open == nil {
			return m, nil
		}
		return m, tea.Batch(m.fetchThread(m.open.ID), m.refreshTick())

	case sentMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		if m.open != nil {
			return m, m.fetchThread(m.open.ID)
		}
		return m, nil

	case searchMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.results = msg.users
		m.resultCursor = 0
		return m, nil

	case tea.KeyMsg:
		switch m.pane {
		case paneThread:
			return m.updateThread(msg)
		case paneSearch:
			return m.updateSearch(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.conversations)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		return m, m.fetchList()
	case "n":
		m.pane = paneSearch
		m.results = nil
		m.search.SetValue("")
		m.search.Focus()
		return m, textinput.Blink
	case "enter":
		if m.cursor < len(m.conversations) {
			return m, m.fetchThread(m.conversations[m.cursor].ID)
		}
	}
	return m, nil
}

func (m *Model) updateThread(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Close()
		// Unread counts changed by reading the thread
		return m, m.fetchList()
	case "enter":
		content := strings.TrimSpace(m.input.Value())
		if content == "" || m.open == nil {
			return m, nil
		}
		m.input.SetValue("")
		id := m.open.ID
		return m, func() tea.Msg {
			_, err := m.client.SendMessage(context.Background(), id, content)
			return sentMsg{err: err}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pane = paneList
		m.search.Blur()
		return m, nil
	case "down", "tab":
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
		return m, nil
	case "up", "shift+tab":
		if m.resultCursor > 0 {
			m.resultCursor--
		}
		return m, nil
	case "enter":
		// With results shown, enter picks a person; otherwise it searches
		if len(m.results) > 0 {
			recipient := m.results[m.resultCursor].ID
			m.pane = paneList
			m.search.Blur()
			generation := m.generation
			return m, func() tea.Msg {
				conversation, err := m.client.StartConversation(context.Background(), recipient)
				return threadMsg{generation: generation, conversation: conversation, err: err}
			}
		}
		q := m.search.Value()
		return m, func() tea.Msg {
			users, err := m.client.SearchUsers(context.Background(), q)
			return searchMsg{users: users, err: err}
		}
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active pane.
func (m *Model) View() string {
	switch m.pane {
	case paneThread:
		return m.viewThread()
	case paneSearch:
		return m.viewSearch()
	default:
		return m.viewList()
	}
}

func (m *Model) viewList() string {
	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("Messages"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.theme.MutedText.Render("loading conversations..."))
	case len(m.conversations) == 0:
		b.WriteString(m.theme.MutedText.Render("no conversations yet, press n to start one"))
	default:
		for i, c := range m.conversations {
			name := c.OtherParticipant.DisplayName()
			line := m.theme.ListTitle.Render(name)
			if c.UnreadCount > 0 {
				line += " " + m.theme.UnreadBadge.Render(fmt.Sprintf("%d", c.UnreadCount))
			}
			if c.LastMessage != nil {
				preview := util.TruncateWidth(util.FirstLine(c.LastMessage.Content), 48)
				line += "\n      " + m.theme.ListMeta.Render(
					preview+" · "+model.TimeAgo(c.LastMessage.CreatedAt, timeNow()))
			}
			if i == m.cursor {
				b.WriteString(m.theme.ListSelected.String() + line)
			} else {
				b.WriteString(m.theme.ListItem.Render(line))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) viewThread() string {
	var b strings.Builder
	if m.open == nil {
		return m.theme.MutedText.Render("loading conversation...")
	}

	b.WriteString(m.theme.Brand.Render(m.open.OtherParticipant.DisplayName()))
	b.WriteString("\n\n")

	me := m.client.Session().Actor()
	maxRows := m.height - 7
	msgs := m.open.Messages
	if maxRows > 0 && len(msgs) > maxRows {
		msgs = msgs[len(msgs)-maxRows:]
	}
	for _, pm := range msgs {
		bubble := m.theme.BubbleTheirs
		if me != nil && pm.Sender != nil && pm.Sender.ID == me.ID {
			bubble = m.theme.BubbleMine
		}
		b.WriteString(bubble.Render(pm.Content))
		b.WriteString(" " + m.theme.Timestamp.Render(model.TimeAgo(pm.CreatedAt, timeNow())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.MutedText.Render("enter send  esc back"))
	return b.String()
}

func (m *Model) viewSearch() string {
	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("New message"))
	b.WriteString("\n\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	for i, u := range m.results {
		line := m.theme.ListTitle.Render(u.DisplayName()) + "  " +
			m.theme.ListMeta.Render(u.Email)
		if i == m.resultCursor {
			b.WriteString(m.theme.ListSelected.String() + line)
		} else {
			b.WriteString(m.theme.ListItem.Render(line))
		}
		b.WriteString("\n")
	}

	hint := "enter search  esc cancel"
	if len(m.results) > 0 {
		hint = "enter message this person  tab next  esc cancel"
	}
	b.WriteString("\n")
	b.WriteString(m.theme.MutedText.Render(hint))
	return b.String()
}
