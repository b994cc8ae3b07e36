// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatroom

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/auth"
	"github.com/jeranaias/talk-tui/internal/config"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

func newTestRooms(t *testing.T) *Model {
	t.Helper()
	sess := auth.NewSession(auth.NewMemoryStore())
	client := api.New(config.APIConfig{BaseURL: "http://127.0.0.1:0", TimeoutSeconds: 1}, sess)
	return New(client, styles.NewTheme(), time.Minute)
}

func enterRoom(t *testing.T, m *Model, roomID int) *Model {
	t.Helper()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd, "opening a room must fetch its messages")
	require.Equal(t, roomID, m.openRoom)

	m, cmd = m.Update(messagesMsg{roomID: roomID})
	require.NotNil(t, cmd, "first message batch must schedule the poll tick")
	require.True(t, m.polling)
	return m
}

func TestPollStopsOnCloseAndDropsStaleTicks(t *testing.T) {
	m := newTestRooms(t)
	m, _ = m.Update(roomsMsg{rooms: []model.ChatRoom{{ID: 7, Name: "general"}}})
	m = enterRoom(t, m, 7)

	stale := m.generation
	m.Close()
	assert.False(t, m.polling)
	assert.Zero(t, m.openRoom)

	// A tick scheduled before the close must not revive the loop.
	m, cmd := m.Update(pollTickMsg{generation: stale})
	assert.Nil(t, cmd)
	assert.False(t, m.polling)

	// Likewise a message fetch that resolved after leaving the room.
	m, cmd = m.Update(messagesMsg{roomID: 7, messages: []model.ChatMessage{{ID: 1}}})
	assert.Nil(t, cmd)
	assert.Empty(t, m.messages)
}

func TestPollRestartsWhenRoomReopened(t *testing.T) {
	m := newTestRooms(t)
	m, _ = m.Update(roomsMsg{rooms: []model.ChatRoom{{ID: 7, Name: "general"}}})
	m = enterRoom(t, m, 7)

	// Bounced out of the view (e.g. an auth redirect closed it).
	m.Close()

	// Coming back re-opens the room and re-arms the poll chain.
	m = enterRoom(t, m, 7)
	m, cmd := m.Update(pollTickMsg{generation: m.generation})
	require.NotNil(t, cmd, "a live tick refetches and schedules the next tick")
	assert.True(t, m.polling)
}
