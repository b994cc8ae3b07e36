// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the Talk@FCIT domain types exchanged with the
// backend REST API: users, categories, posts, comments, notifications,
// conversations, chat rooms, and moderation reports.
//
// All types here are wire types. The backend owns every durable field;
// the client never invents state beyond the optimistic vote delta kept
// in internal/vote.
package model
