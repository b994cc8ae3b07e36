// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package messages

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

func newTestMessages(t *testing.T) *Model {
	t.Helper()
	sess := auth.NewSession(auth.NewMemoryStore())
	client := api.New(config.APIConfig{BaseURL: "http://127.0.0.1:0", TimeoutSeconds: 1}, sess)
	return New(client, styles.NewTheme(), time.Minute)
}

func testConversation(id int) *model.Conversation {
	return &model.Conversation{
		ID:               id,
		OtherParticipant: &model.User{ID: 2, FirstName: "Omar", LastName: "Siddiqui"},
	}
}

func TestOpeningThreadStartsRefreshLoop(t *testing.T) {
	m := newTestMessages(t)

	m, cmd := m.Update(threadMsg{generation: m.generation, conversation: testConversation(3)})
	require.NotNil(t, cmd, "opening a thread must schedule the refresh tick")
	assert.Equal(t, paneThread, m.pane)
	assert.True(t, m.polling)

	// A live tick refetches the thread and schedules the next tick.
	m, cmd = m.Update(refreshTickMsg{generation: m.generation})
	require.NotNil(t, cmd)
	assert.True(t, m.polling)
}

func TestRefreshStopsWhenThreadClosed(t *testing.T) {
	m := newTestMessages(t)
	m, _ = m.Update(threadMsg{generation: m.generation, conversation: testConversation(3)})

	stale := m.generation
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd, "leaving the thread refetches the list for unread counts")
	assert.Equal(t, paneList, m.pane)
	assert.False(t, m.polling)

	// A tick scheduled before the close must not revive the loop.
	m, cmd = m.Update(refreshTickMsg{generation: stale})
	assert.Nil(t, cmd)

	// Likewise a refresh that resolved after leaving the thread.
	m, cmd = m.Update(threadMsg{generation: stale, conversation: testConversation(3)})
	assert.Nil(t, cmd)
	assert.Nil(t, m.open)
	assert.Equal(t, paneList, m.pane)
}

func TestRefreshRestartsWhenThreadReopened(t *testing.T) {
	m := newTestMessages(t)
	m, _ = m.Update(threadMsg{generation: m.generation, conversation: testConversation(3)})

	// The app switches away and back.
	m.Close()
	m, cmd := m.Update(threadMsg{generation: m.generation, conversation: testConversation(3)})
	require.NotNil(t, cmd, "reopening must re-arm the refresh loop")
	assert.True(t, m.polling)

	m, cmd = m.Update(refreshTickMsg{generation: m.generation})
	require.NotNil(t, cmd)
	assert.Equal(t, 3, m.open.ID)
}
