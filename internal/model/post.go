// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CATEGORIES
// =============================================================================

// Category groups posts on the discussion board.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PostsCount  int    `json:"posts_count,omitempty"`
}

// categoryIcons maps well-known category slugs to their display glyphs.
var categoryIcons = map[string]string{
	"general":   "💬",
	"academics": "📚",
	"events":    "🎉",
	"tech-talk": "💻",
	"career":    "💼",
	"help":      "❓",
}

// Icon returns the display glyph for the category.
func (c *Category) Icon() string {
	if c == nil {
		return "📝"
	}
	if icon, ok := categoryIcons[c.Slug]; ok {
		return icon
	}
	return "📝"
}

// =============================================================================
// POSTS
// =============================================================================

// Post is a discussion thread.
//
// UserVote carries the viewer's stored vote (+1, -1) or 0 when the viewer
// has not voted. UpvotesCount is the server-confirmed net count; the
// optimistic delta lives in internal/vote, never here.
type Post struct {
	ID            int       `json:"id"`
	Author        *User     `json:"author"`
	Category      *Category `json:"category"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	UpvotesCount  int       `json:"upvotes_count"`
	CommentsCount int       `json:"comments_count"`
	IsPinned      bool      `json:"is_pinned"`
	IsLocked      bool      `json:"is_locked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserVote      int       `json:"user_vote,omitempty"`
}

// NewPost is the request body for creating a post.
type NewPost struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category int    `json:"category"`
}

// =============================================================================
// COMMENTS
// =============================================================================

// Comment is a reply on a post. Parent is nil for top-level comments.
type Comment struct {
	ID           int       `json:"id"`
	PostID       int       `json:"post_id"`
	Author       *User     `json:"author"`
	Content      string    `json:"content"`
	Parent       *int      `json:"parent"`
	UpvotesCount int       `json:"upvotes_count"`
	CreatedAt    time.Time `json:"created_at"`
	UserVote     int       `json:"user_vote,omitempty"`
}

// IsReply reports whether the comment is nested under another comment.
func (c *Comment) IsReply() bool {
	return c.Parent != nil
}

// Thread arranges a flat comment list into top-level comments plus a
// replies lookup keyed by parent comment ID, preserving order.
func Thread(comments []Comment) (top []Comment, replies map[int][]Comment) {
	replies = make(map[int][]Comment)
	for _, c := range comments {
		if c.Parent == nil {
			top = append(top, c)
			continue
		}
		replies[*c.Parent] = append(replies[*c.Parent], c)
	}
	return top, replies
}
