// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jeranaias/talk-tui/internal/model"
)

// =============================================================================
// DISCUSSION ENDPOINTS
// =============================================================================

// Categories lists the board categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	return getList[model.Category](ctx, c, "/discussions/categories/", nil)
}

// PostFilter narrows a post listing. Zero values are omitted.
type PostFilter struct {
	Category string
	Search   string
	Author   int
}

// Posts lists posts, filterable by category slug, search text, or author.
// Author-filtered listings are ordered newest first, matching profile
// pages.
func (c *Client) Posts(ctx context.Context, filter PostFilter) ([]model.Post, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Author != 0 {
		query.Set("author", strconv.Itoa(filter.Author))
		query.Set("ordering", "-created_at")
	}
	return getList[model.Post](ctx, c, "/discussions/posts/", query)
}

// Post fetches one post with the viewer's vote state.
func (c *Client) Post(ctx context.Context, id int) (*model.Post, error) {
	var p model.Post
	if err := c.getJSON(ctx, fmt.Sprintf("/discussions/posts/%d/", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost creates a post and returns the stored copy.
func (c *Client) CreatePost(ctx context.Context, np model.NewPost) (*model.Post, error) {
	var p model.Post
	if err := c.postJSON(ctx, "/discussions/posts/", np, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost removes a post (author or moderator only, enforced
// server-side).
func (c *Client) DeletePost(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/discussions/posts/%d/", id))
}

// =============================================================================
// VOTES
// =============================================================================

// voteRequest is the idempotent "set vote" body: 1, -1, or 0 to unvote.
type voteRequest struct {
	Value int `json:"value"`
}

// VotePost sets the viewer's vote on a post. Every transition confirms
// against the backend, including toggle-off (value 0).
func (c *Client) VotePost(ctx context.Context, postID, value int) error {
	return c.postJSON(ctx, fmt.Sprintf("/discussions/posts/%d/vote/", postID), voteRequest{Value: value}, nil)
}

// VoteComment sets the viewer's vote on a comment through the comment
// analogue of the post vote endpoint.
func (c *Client) VoteComment(ctx context.Context, commentID, value int) error {
	return c.postJSON(ctx, fmt.Sprintf("/discussions/comments/%d/vote/", commentID), voteRequest{Value: value}, nil)
}

// =============================================================================
// COMMENTS
// =============================================================================

// Comments lists a post's comments (flat; threading is client-side via
// model.Thread).
func (c *Client) Comments(ctx context.Context, postID int) ([]model.Comment, error) {
	return getList[model.Comment](ctx, c, fmt.Sprintf("/discussions/posts/%d/comments/", postID), nil)
}

// newComment is the body for creating a comment or reply.
type newComment struct {
	Content string `json:"content"`
	Parent  *int   `json:"parent,omitempty"`
}

// AddComment creates a top-level comment (parent nil) or a reply.
func (c *Client) AddComment(ctx context.Context, postID int, content string, parent *int) (*model.Comment, error) {
	var cm model.Comment
	err := c.postJSON(ctx, fmt.Sprintf("/discussions/posts/%d/comments/", postID),
		newComment{Content: content, Parent: parent}, &cm)
	if err != nil {
		return nil, err
	}
	return &cm, nil
}
