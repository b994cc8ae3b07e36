// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for the talk client:
// unsent drafts (posts, comments, private messages) and the viewer's
// recent post history. Data lives in a SQLite database under the
// profile directory and never leaves the machine.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("store is closed")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the local draft and history database.
type Store struct {
	db           *sql.DB
	historyLimit int
}

// DefaultHistoryLimit bounds the recent-posts list when no limit is
// configured.
const DefaultHistoryLimit = 50

// Open opens (creating if needed) the database at path. historyLimit
// bounds how many viewed posts are retained; zero or negative uses
// DefaultHistoryLimit.
func Open(path string, historyLimit int) (*Store, error) {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	s := &Store{db: db, historyLimit: historyLimit}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
			kind       TEXT NOT NULL,
			ref        TEXT NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			category   TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (kind, ref)
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			post_id   INTEGER PRIMARY KEY,
			title     TEXT NOT NULL,
			viewed_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_viewed ON history(viewed_at DESC)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// =============================================================================
// DRAFTS
// =============================================================================

// Draft kinds.
const (
	DraftPost    = "post"
	DraftComment = "comment"
	DraftMessage = "message"
)

// Draft is unsent composer content keyed by kind and target. For
// comments the ref is the post ID, for messages the conversation ID,
// and for posts the empty string (one post draft at a time).
type Draft struct {
	Kind      string
	Ref       string
	Title     string
	Category  string
	Content   string
	UpdatedAt time.Time
}

// SaveDraft upserts a draft. Empty content deletes it instead, so an
// emptied composer leaves no stale draft behind.
func (s *Store) SaveDraft(d Draft) error {
	if s.db == nil {
		return ErrClosed
	}
	if d.Content == "" && d.Title == "" {
		return s.DeleteDraft(d.Kind, d.Ref)
	}
	_, err := s.db.Exec(
		`INSERT INTO drafts (kind, ref, title, category, content, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(kind, ref) DO UPDATE SET
		   title = excluded.title,
		   category = excluded.category,
		   content = excluded.content,
		   updated_at = excluded.updated_at`,
		d.Kind, d.Ref, d.Title, d.Category, d.Content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Draft loads the draft for the given kind and target.
func (s *Store) Draft(kind, ref string) (*Draft, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	var d Draft
	err := s.db.QueryRow(
		`SELECT kind, ref, title, category, content, updated_at
		 FROM drafts WHERE kind = ? AND ref = ?`, kind, ref).
		Scan(&d.Kind, &d.Ref, &d.Title, &d.Category, &d.Content, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return &d, nil
}

// DeleteDraft removes a draft. Deleting an absent draft is a no-op.
func (s *Store) DeleteDraft(kind, ref string) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE kind = ? AND ref = ?`, kind, ref); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Drafts lists all drafts, most recently updated first.
func (s *Store) Drafts() ([]Draft, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.Query(
		`SELECT kind, ref, title, category, content, updated_at
		 FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.Kind, &d.Ref, &d.Title, &d.Category, &d.Content, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// =============================================================================
// VIEW HISTORY
// =============================================================================

// ViewedPost is one entry of the recent-posts history.
type ViewedPost struct {
	PostID   int
	Title    string
	ViewedAt time.Time
}

// RecordView notes that the viewer opened a post. Re-opening moves the
// post to the top. History beyond the configured limit is pruned.
func (s *Store) RecordView(postID int, title string) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.Exec(
		`INSERT INTO history (post_id, title, viewed_at) VALUES (?, ?, ?)
		 ON CONFLICT(post_id) DO UPDATE SET
		   title = excluded.title,
		   viewed_at = excluded.viewed_at`,
		postID, title, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}

	_, err = s.db.Exec(
		`DELETE FROM history WHERE post_id NOT IN (
		   SELECT post_id FROM history ORDER BY viewed_at DESC LIMIT ?)`,
		s.historyLimit)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// History lists recently viewed posts, newest first, up to limit
// (zero or negative means the configured limit).
func (s *Store) History(limit int) ([]ViewedPost, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	rows, err := s.db.Query(
		`SELECT post_id, title, viewed_at FROM history
		 ORDER BY viewed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var views []ViewedPost
	for rows.Next() {
		var v ViewedPost
		if err := rows.Scan(&v.PostID, &v.Title, &v.ViewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ClearHistory removes all view history.
func (s *Store) ClearHistory() error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
