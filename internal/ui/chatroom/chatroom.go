// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatroom implements the shared chat rooms view: a room list
// on the left and the selected room's messages, refreshed on a fixed
// poll interval while the view is open.
package chatroom

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

// DefaultPollInterval refreshes open room messages every five seconds.
const DefaultPollInterval = 5 * time.Second

// timeNow is stubbed in tests.
var timeNow = time.Now

// =============================================================================
// MESSAGES
// =============================================================================

// ErrMsg surfaces a background failure.
type ErrMsg struct{ Err error }

// AuthRequiredMsg asks the app to redirect to the login view.
type AuthRequiredMsg struct{ Reason string }

type roomsMsg struct {
	rooms []model.ChatRoom
	err   error
}

type messagesMsg struct {
	roomID   int
	messages []model.ChatMessage
	err      error
}

type sentMsg struct{ err error }

// pollTickMsg drives the periodic room refresh. The generation guards
// against stale ticks after the room changes or the view closes.
type pollTickMsg struct{ generation int }

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat rooms view state.
type Model struct {
	client   *api.Client
	theme    *styles.Theme
	interval time.Duration

	rooms    []model.ChatRoom
	cursor   int
	openRoom int // 0 when browsing the room list
	messages []model.ChatMessage

	input      textinput.Model
	creating   bool
	nameInput  textinput.Model
	generation int
	polling    bool
	loading    bool
	width      int
	height     int
}

// New creates the chat rooms view.
func New(client *api.Client, theme *styles.Theme, interval time.Duration) *Model {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	input := textinput.New()
	input.Placeholder = "say something"
	input.CharLimit = 1000

	nameInput := textinput.New()
	nameInput.Placeholder = "room name"
	nameInput.CharLimit = 80

	return &Model{
		client:    client,
		theme:     theme,
		interval:  interval,
		input:     input,
		nameInput: nameInput,
	}
}

// SetSize stores the available render size.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.input.Width = w - 8
}

// Init loads the room list.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.fetchRooms()
}

// Close stops the poll loop when the app switches away from this view.
func (m *Model) Close() {
	m.generation++
	m.polling = false
	m.openRoom = 0
	m.input.Blur()
}

func (m *Model) fetchRooms() tea.Cmd {
	return func() tea.Msg {
		rooms, err := m.client.ChatRooms(context.Background())
		return roomsMsg{rooms: rooms, err: err}
	}
}

func (m *Model) fetchMessages(roomID int) tea.Cmd {
	return func() tea.Msg {
		messages, err := m.client.ChatRoomMessages(context.Background(), roomID)
		return messagesMsg{roomID: roomID, messages: messages, err: err}
	}
}

func (m *Model) pollTick() tea.Cmd {
	generation := m.generation
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return pollTickMsg{generation: generation}
	})
}

// Update handles messages for the chat rooms view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case roomsMsg:
		m.loading = false
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.rooms = msg.rooms
		if m.cursor >= len(m.rooms) {
			m.cursor = 0
		}
		return m, nil

	case messagesMsg:
		if msg.roomID != m.openRoom {
			// Stale fetch for a room we already left
			return m, nil
		}
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.messages = msg.messages
		if !m.polling {
			m.polling = true
			return m, m.pollTick()
		}
		return m, nil

	case pollTickMsg:
		if msg.generation != m.generation || m.openRoom == 0 {
			return m, nil
		}
		return m, tea.Batch(m.fetchMessages(m.openRoom), m.pollTick())

	case sentMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		// Show the new message without waiting for the next tick
		if m.openRoom != 0 {
			return m, m.fetchMessages(m.openRoom)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (*Model, tea.Cmd) {
	// Room creation form
	if m.creating {
		switch msg.String() {
		case "esc":
			m.creating = false
			m.nameInput.Blur()
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				return m, nil
			}
			m.creating = false
			m.nameInput.Blur()
			m.nameInput.SetValue("")
			return m, func() tea.Msg {
				_, err := m.client.CreateChatRoom(context.Background(), name, "")
				if err != nil {
					return ErrMsg{Err: err}
				}
				rooms, err := m.client.ChatRooms(context.Background())
				return roomsMsg{rooms: rooms, err: err}
			}
		}
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}

	// Inside a room
	if m.openRoom != 0 {
		switch msg.String() {
		case "esc":
			m.Close()
			return m, nil
		case "enter":
			content := strings.TrimSpace(m.input.Value())
			if content == "" {
				return m, nil
			}
			if !m.client.Session().Authenticated() {
				return m, func() tea.Msg {
					return AuthRequiredMsg{Reason: "sign in to chat"}
				}
			}
			m.input.SetValue("")
			roomID := m.openRoom
			return m, func() tea.Msg {
				_, err := m.client.SendChatRoomMessage(context.Background(), roomID, content)
				return sentMsg{err: err}
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	// Room list
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.rooms)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "n":
		m.creating = true
		m.nameInput.Focus()
		return m, textinput.Blink
	case "r":
		return m, m.fetchRooms()
	case "enter":
		if m.cursor < len(m.rooms) {
			m.openRoom = m.rooms[m.cursor].ID
			m.messages = nil
			m.polling = false
			m.generation++
			m.input.Focus()
			return m, tea.Batch(m.fetchMessages(m.openRoom), textinput.Blink)
		}
	}
	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the room list or the open room.
func (m *Model) View() string {
	if m.openRoom != 0 {
		return m.viewRoom()
	}

	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("Chat Rooms"))
	b.WriteString("\n\n")

	switch {
	case m.creating:
		b.WriteString(m.theme.InputLabel.Render("New room name"))
		b.WriteString("\n")
		b.WriteString(m.nameInput.View())
		b.WriteString("\n")
		b.WriteString(m.theme.MutedText.Render("enter create  esc cancel"))
	case m.loading:
		b.WriteString(m.theme.MutedText.Render("loading rooms..."))
	case len(m.rooms) == 0:
		b.WriteString(m.theme.MutedText.Render("no rooms yet, press n to create one"))
	default:
		for i, room := range m.rooms {
			line := m.theme.ListTitle.Render(room.Name)
			if room.Description != "" {
				line += "  " + m.theme.ListMeta.Render(util.FirstLine(room.Description))
			}
			line += "  " + m.theme.ListMeta.Render(fmt.Sprintf("(%d messages)", room.MessageCount))
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

func (m *Model) viewRoom() string {
	var b strings.Builder

	name := fmt.Sprintf("room %d", m.openRoom)
	for _, r := range m.rooms {
		if r.ID == m.openRoom {
			name = r.Name
			break
		}
	}
	b.WriteString(m.theme.Brand.Render("# " + name))
	b.WriteString("\n\n")

	maxRows := m.height - 7
	msgs := m.messages
	if maxRows > 0 && len(msgs) > maxRows {
		msgs = msgs[len(msgs)-maxRows:]
	}
	if len(msgs) == 0 {
		b.WriteString(m.theme.MutedText.Render("no messages yet"))
		b.WriteString("\n")
	}
	me := m.client.Session().Actor()
	for _, msg := range msgs {
		author := msg.Sender.DisplayName()
		style := m.theme.Author
		if me != nil && msg.Sender != nil && msg.Sender.ID == me.ID {
			style = m.theme.Brand
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			style.Render(author),
			m.theme.Timestamp.Render(model.TimeAgo(msg.CreatedAt, timeNow())),
			msg.Content))
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.MutedText.Render("enter send  esc leave room"))
	return b.String()
}
