// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
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
	"github.com/jeranaias/talk-tui/internal/vote"
)

func newTestFeed(t *testing.T, handler http.HandlerFunc, signedIn bool) *Model {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := auth.NewSession(auth.NewMemoryStore())
	if signedIn {
		require.NoError(t, sess.Store().Save(auth.Credentials{AccessToken: "a", RefreshToken: "r"}))
	}
	client := api.New(config.APIConfig{BaseURL: server.URL, TimeoutSeconds: 5}, sess)
	return New(client, styles.NewTheme(), config.UIConfig{})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testPosts() []model.Post {
	author := &model.User{ID: 1, FirstName: "Sana", LastName: "Tariq", Email: "s@pucit.edu.pk"}
	return []model.Post{
		{ID: 10, Title: "first post", Author: author, UpvotesCount: 5},
		{ID: 11, Title: "second post", Author: author, UpvotesCount: 2, UserVote: 1},
	}
}

func TestLoadedMsgReseedsVoteControllers(t *testing.T) {
	m := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, false)

	// Stale controller from before a reload
	m.votes[10] = vote.New(1, 99)
	m.cursor = 5

	m, _ = m.Update(loadedMsg{
		posts:      testPosts(),
		categories: []model.Category{{ID: 1, Name: "General", Slug: "general"}},
	})

	assert.Len(t, m.posts, 2)
	assert.Len(t, m.categories, 1)
	assert.Equal(t, 0, m.cursor, "cursor past the end resets to the top")
	assert.Empty(t, m.votes, "controllers reseed from server truth")

	// Fresh controller picks up the server-confirmed vote state.
	value, count := m.controller(&m.posts[1]).State()
	assert.Equal(t, vote.Up, value)
	assert.Equal(t, 2, count)
}

func TestNavigationKeys(t *testing.T) {
	m := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, false)
	m, _ = m.Update(loadedMsg{posts: testPosts()})

	m, _ = m.Update(key("j"))
	assert.Equal(t, 1, m.cursor)
	m, _ = m.Update(key("j"))
	assert.Equal(t, 1, m.cursor, "cursor stops at the last post")
	m, _ = m.Update(key("k"))
	assert.Equal(t, 0, m.cursor)
	m, _ = m.Update(key("G"))
	assert.Equal(t, 1, m.cursor)
	m, _ = m.Update(key("g"))
	assert.Equal(t, 0, m.cursor)
}

func TestEnterOpensSelectedPost(t *testing.T) {
	m := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, false)
	m, _ = m.Update(loadedMsg{posts: testPosts()})
	m, _ = m.Update(key("j"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	open, ok := cmd().(OpenPostMsg)
	require.True(t, ok)
	assert.Equal(t, 11, open.PostID)
}

func TestVoteAppliesOptimisticallyThenConfirms(t *testing.T) {
	var votes atomic.Int32
	m := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/discussions/posts/10/vote/" {
			votes.Add(1)
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`[]`))
	}, true)
	m, _ = m.Update(loadedMsg{posts: testPosts()})

	m, cmd := m.Update(key("u"))
	require.NotNil(t, cmd)

	// The vote shows before the backend answers.
	value, count := m.votes[10].State()
	assert.Equal(t, vote.Up, value)
	assert.Equal(t, 6, count)

	settled, ok := cmd().(voteSettledMsg)
	require.True(t, ok)
	require.NoError(t, settled.err)
	assert.Equal(t, 10, settled.postID)
	assert.Equal(t, int32(1), votes.Load())

	m, _ = m.Update(settled)
	value, count = m.votes[10].State()
	assert.Equal(t, vote.Up, value)
	assert.Equal(t, 6, count)

	// Confirmed state accepts the next transition.
	_, err := m.votes[10].Apply(vote.Down)
	assert.NoError(t, err)
}

func TestVoteRollsBackWhenBackendRejects(t *testing.T) {
	m := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/discussions/posts/10/vote/" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"try again"}`))
			return
		}
		w.Write([]byte(`[]`))
	}, true)
	m, _ = m.Update(loadedMsg{posts: testPosts()})

	m, cmd := m.Update(key("u"))
	require.NotNil(t, cmd)

	settled, ok := cmd().(voteSettledMsg)
	require.True(t, ok)
	require.Error(t, settled.err)

	m, errCmd := m.Update(settled)
	require.NotNil(t, errCmd)
	_, isErr := errCmd().(ErrMsg)
	assert.True(t, isErr, "failures surface to the toast stack")

	value, count := m.votes[10].State()
	assert.Equal(t, vote.None, value)
	assert.Equal(t, 5, count, "rollback restores the pre-vote snapshot")
}

func TestRenderPostHonorsDisplaySettings(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)
	restore := timeNow
	timeNow = func() time.Time { return created.Add(2 * time.Hour) }
	t.Cleanup(func() { timeNow = restore })

	m := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, false)
	posts := testPosts()
	posts[0].CreatedAt = created
	posts[0].CommentsCount = 3
	m, _ = m.Update(loadedMsg{posts: posts})

	// Defaults: a meta row with the comment count, relative time only.
	card := m.renderPost(0)
	assert.Contains(t, card, "3 comments")
	assert.NotContains(t, card, "Mar 14 09:30")

	m.ui.ShowTimestamps = true
	assert.Contains(t, m.renderPost(0), "(Mar 14 09:30)")

	m.ui.CompactFeed = true
	compact := m.renderPost(0)
	assert.NotContains(t, compact, "comments", "compact cards skip the meta row")
	assert.Contains(t, compact, "Sana Tariq")
}

func TestVoteWhileSignedOutRedirectsToLogin(t *testing.T) {
	m := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, false)
	m, _ = m.Update(loadedMsg{posts: testPosts()})

	_, cmd := m.Update(key("u"))
	require.NotNil(t, cmd)
	redirect, ok := cmd().(AuthRequiredMsg)
	require.True(t, ok)
	assert.Equal(t, "sign in to vote", redirect.Reason)
	assert.Empty(t, m.votes, "no optimistic state while signed out")
}
