// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// DIRECT MESSAGES
// =============================================================================

// PrivateMessage is a single direct message inside a conversation.
type PrivateMessage struct {
	ID        int       `json:"id"`
	Sender    *User     `json:"sender"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// LastMessage is the conversation-list preview of the newest message.
type LastMessage struct {
	Content   string    `json:"content"`
	SenderID  int       `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// Conversation is a two-party direct-message thread.
//
// The list endpoint returns conversations without Messages; the detail
// endpoint (/messaging/conversations/{id}/) includes them.
type Conversation struct {
	ID               int              `json:"id"`
	Participants     []User           `json:"participants"`
	OtherParticipant *User            `json:"other_participant"`
	Messages         []PrivateMessage `json:"messages,omitempty"`
	LastMessage      *LastMessage     `json:"last_message,omitempty"`
	UnreadCount      int              `json:"unread_count"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// =============================================================================
// CHAT ROOMS
// =============================================================================

// ChatRoom is a shared room polled by every member.
type ChatRoom struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
	MessageCount int    `json:"message_count"`
}

// ChatMessage is a message inside a chat room.
type ChatMessage struct {
	ID        int       `json:"id"`
	Sender    *User     `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	NotifyComment NotificationType = "comment"
	NotifyReply   NotificationType = "reply"
	NotifyMention NotificationType = "mention"
	NotifyVote    NotificationType = "vote"
)

// Notification is an activity item from /notifications/.
type Notification struct {
	ID        int              `json:"id"`
	Sender    *User            `json:"sender"`
	Type      NotificationType `json:"notification_type"`
	Message   string           `json:"message"`
	PostID    int              `json:"post_id,omitempty"`
	CommentID int              `json:"comment_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// CountUnread returns how many notifications are unread.
func CountUnread(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n
}
