// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// MODERATION REPORTS
// =============================================================================

// ReportStatus is the triage state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// ReportType classifies why content was reported.
type ReportType string

const (
	ReportSpam       ReportType = "spam"
	ReportHarassment ReportType = "harassment"
	ReportOffTopic   ReportType = "off_topic"
	ReportOther      ReportType = "other"
)

// Report is a user-filed moderation report against a post or comment.
type Report struct {
	ID             int          `json:"id"`
	Reporter       *User        `json:"reporter"`
	PostID         int          `json:"post_id,omitempty"`
	CommentID      int          `json:"comment_id,omitempty"`
	Post           *Post        `json:"post,omitempty"`
	Reason         string       `json:"reason"`
	Type           ReportType   `json:"report_type"`
	Status         ReportStatus `json:"status"`
	ModeratorNotes string       `json:"moderator_notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NewReport is the request body for /reports/create/.
type NewReport struct {
	PostID    int        `json:"post_id,omitempty"`
	CommentID int        `json:"comment_id,omitempty"`
	Reason    string     `json:"reason"`
	Type      ReportType `json:"report_type"`
}

// CountByStatus tallies reports per status for the moderation dashboard.
func CountByStatus(reports []Report) map[ReportStatus]int {
	counts := make(map[ReportStatus]int, 3)
	for _, r := range reports {
		counts[r.Status]++
	}
	return counts
}
