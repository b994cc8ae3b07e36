// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, historyLimit int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "talk.db"), historyLimit)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDraftRoundTrip(t *testing.T) {
	s := newTestStore(t, 0)

	err := s.SaveDraft(Draft{
		Kind:     DraftPost,
		Ref:      "",
		Title:    "GPU lab schedule",
		Category: "tech-talk",
		Content:  "Anyone else unable to book the lab this week?",
	})
	require.NoError(t, err)

	d, err := s.Draft(DraftPost, "")
	require.NoError(t, err)
	assert.Equal(t, "GPU lab schedule", d.Title)
	assert.Equal(t, "tech-talk", d.Category)
	assert.False(t, d.UpdatedAt.IsZero())

	// Upsert replaces in place
	err = s.SaveDraft(Draft{Kind: DraftPost, Ref: "", Title: "GPU lab schedule", Content: "edited"})
	require.NoError(t, err)
	d, err = s.Draft(DraftPost, "")
	require.NoError(t, err)
	assert.Equal(t, "edited", d.Content)

	drafts, err := s.Drafts()
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestDraftsKeyedByKindAndRef(t *testing.T) {
	s := newTestStore(t, 0)

	require.NoError(t, s.SaveDraft(Draft{Kind: DraftComment, Ref: "12", Content: "reply to 12"}))
	require.NoError(t, s.SaveDraft(Draft{Kind: DraftComment, Ref: "34", Content: "reply to 34"}))
	require.NoError(t, s.SaveDraft(Draft{Kind: DraftMessage, Ref: "12", Content: "dm in convo 12"}))

	d, err := s.Draft(DraftComment, "12")
	require.NoError(t, err)
	assert.Equal(t, "reply to 12", d.Content)

	d, err = s.Draft(DraftMessage, "12")
	require.NoError(t, err)
	assert.Equal(t, "dm in convo 12", d.Content)

	drafts, err := s.Drafts()
	require.NoError(t, err)
	assert.Len(t, drafts, 3)
}

func TestEmptyDraftIsDeleted(t *testing.T) {
	s := newTestStore(t, 0)

	require.NoError(t, s.SaveDraft(Draft{Kind: DraftComment, Ref: "5", Content: "wip"}))
	require.NoError(t, s.SaveDraft(Draft{Kind: DraftComment, Ref: "5"}))

	_, err := s.Draft(DraftComment, "5")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDraft(t *testing.T) {
	s := newTestStore(t, 0)

	require.NoError(t, s.SaveDraft(Draft{Kind: DraftComment, Ref: "5", Content: "wip"}))
	require.NoError(t, s.DeleteDraft(DraftComment, "5"))
	_, err := s.Draft(DraftComment, "5")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op
	require.NoError(t, s.DeleteDraft(DraftComment, "5"))
}

func TestHistoryOrderAndPrune(t *testing.T) {
	s := newTestStore(t, 3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.RecordView(i, fmt.Sprintf("post %d", i)))
		time.Sleep(2 * time.Millisecond)
	}

	views, err := s.History(0)
	require.NoError(t, err)
	require.Len(t, views, 3, "history pruned to configured limit")
	assert.Equal(t, 5, views[0].PostID)
	assert.Equal(t, 4, views[1].PostID)
	assert.Equal(t, 3, views[2].PostID)
}

func TestReopeningMovesPostToTop(t *testing.T) {
	s := newTestStore(t, 10)

	require.NoError(t, s.RecordView(1, "first"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.RecordView(2, "second"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.RecordView(1, "first (renamed)"))

	views, err := s.History(0)
	require.NoError(t, err)
	require.Len(t, views, 2, "re-opening does not duplicate the entry")
	assert.Equal(t, 1, views[0].PostID)
	assert.Equal(t, "first (renamed)", views[0].Title)
}

func TestClearHistory(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.RecordView(1, "one"))
	require.NoError(t, s.ClearHistory())

	views, err := s.History(0)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.db")

	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.SaveDraft(Draft{Kind: DraftPost, Content: "survives restart"}))
	require.NoError(t, s.Close())

	s, err = Open(path, 0)
	require.NoError(t, err)
	defer s.Close()

	d, err := s.Draft(DraftPost, "")
	require.NoError(t, err)
	assert.Equal(t, "survives restart", d.Content)
}

func TestClosedStoreRejectsCalls(t *testing.T) {
	s := newTestStore(t, 0)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.SaveDraft(Draft{Kind: DraftPost, Content: "x"}), ErrClosed)
	_, err := s.Drafts()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.RecordView(1, "x"), ErrClosed)
}
