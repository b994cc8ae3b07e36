// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"

	"github.com/jeranaias/talk-tui/internal/model"
)

// =============================================================================
// DIRECT MESSAGE ENDPOINTS
// =============================================================================

// Conversations lists the actor's direct-message threads (no messages).
func (c *Client) Conversations(ctx context.Context) ([]model.Conversation, error) {
	return getList[model.Conversation](ctx, c, "/messaging/conversations/", nil)
}

// Conversation fetches one thread including its messages.
func (c *Client) Conversation(ctx context.Context, id int) (*model.Conversation, error) {
	var conv model.Conversation
	if err := c.getJSON(ctx, fmt.Sprintf("/messaging/conversations/%d/", id), nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// StartConversation creates (or returns the existing) thread with the
// target user.
func (c *Client) StartConversation(ctx context.Context, recipientID int) (*model.Conversation, error) {
	var conv model.Conversation
	err := c.postJSON(ctx, "/messaging/conversations/start/",
		map[string]int{"recipient_id": recipientID}, &conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// sendMessageRequest is the body of /messaging/send/.
type sendMessageRequest struct {
	ConversationID int    `json:"conversation_id"`
	Content        string `json:"content"`
}

// SendMessage sends a direct message into a conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID int, content string) (*model.PrivateMessage, error) {
	var msg model.PrivateMessage
	err := c.postJSON(ctx, "/messaging/send/",
		sendMessageRequest{ConversationID: conversationID, Content: content}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// =============================================================================
// CHAT ROOM ENDPOINTS
// =============================================================================

// ChatRooms lists the shared chat rooms.
func (c *Client) ChatRooms(ctx context.Context) ([]model.ChatRoom, error) {
	return getList[model.ChatRoom](ctx, c, "/messaging/chat-rooms/", nil)
}

// newChatRoom is the body for creating a room.
type newChatRoom struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateChatRoom creates a shared chat room.
func (c *Client) CreateChatRoom(ctx context.Context, name, description string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := c.postJSON(ctx, "/messaging/chat-rooms/",
		newChatRoom{Name: name, Description: description}, &room)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ChatRoomMessages polls the messages of a room. Called on the room poll
// interval while a room view is active.
func (c *Client) ChatRoomMessages(ctx context.Context, roomID int) ([]model.ChatMessage, error) {
	return getList[model.ChatMessage](ctx, c, fmt.Sprintf("/messaging/chat-rooms/%d/messages/", roomID), nil)
}

// SendChatRoomMessage posts a message into a room.
func (c *Client) SendChatRoomMessage(ctx context.Context, roomID int, content string) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	err := c.postJSON(ctx, fmt.Sprintf("/messaging/chat-rooms/%d/send/", roomID),
		map[string]string{"content": content}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
