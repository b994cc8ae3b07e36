// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"

	"github.com/jeranaias/talk-tui/internal/model"
)

// =============================================================================
// NOTIFICATION ENDPOINTS
// =============================================================================

// Notifications lists the actor's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	return getList[model.Notification](ctx, c, "/notifications/", nil)
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int) error {
	return c.postJSON(ctx, fmt.Sprintf("/notifications/%d/read/", id), nil, nil)
}

// MarkAllNotificationsRead marks every notification read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.postJSON(ctx, "/notifications/mark-all-read/", nil, nil)
}
