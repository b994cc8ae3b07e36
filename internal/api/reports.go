// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/util"
)

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// Reports lists moderation reports, optionally filtered by status.
func (c *Client) Reports(ctx context.Context, status model.ReportStatus) ([]model.Report, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {string(status)}}
	}
	return getList[model.Report](ctx, c, "/reports/", query)
}

// CreateReport files a report against a post or comment.
func (c *Client) CreateReport(ctx context.Context, nr model.NewReport) (*model.Report, error) {
	var r model.Report
	if err := c.postJSON(ctx, "/reports/create/", nr, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// reportUpdate is the body of /reports/{id}/update/.
type reportUpdate struct {
	Status         model.ReportStatus `json:"status"`
	ModeratorNotes string             `json:"moderator_notes,omitempty"`
}

// UpdateReport sets a report's triage status with optional moderator
// notes.
func (c *Client) UpdateReport(ctx context.Context, id int, status model.ReportStatus, notes string) error {
	return c.postJSON(ctx, fmt.Sprintf("/reports/%d/update/", id),
		reportUpdate{Status: status, ModeratorNotes: notes}, nil)
}

// =============================================================================
// USER SEARCH
// =============================================================================

// searchUsersResponse is the /search/users/ payload.
type searchUsersResponse struct {
	Results []model.User `json:"results"`
}

// SearchUsers searches platform users by name or email fragment. The
// query is normalized before dispatch so composed and decomposed input
// match the same accounts.
func (c *Client) SearchUsers(ctx context.Context, q string) ([]model.User, error) {
	q = util.NormalizeQuery(q)
	if q == "" {
		return nil, nil
	}
	var resp searchUsersResponse
	if err := c.getJSON(ctx, "/search/users/", url.Values{"q": {q}}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
