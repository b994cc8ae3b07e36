// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/talk-tui/internal/auth"
	"github.com/jeranaias/talk-tui/internal/model"
)

// authedClient returns a gateway with stored credentials against server.
func authedClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, sess := newTestClient(server.URL)
	require.NoError(t, sess.Store().Save(auth.Credentials{AccessToken: "a", RefreshToken: "r"}))
	return client
}

func TestPostsFilterQuery(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results":[{"id":1,"title":"hello"}]}`))
	}))
	defer server.Close()

	client := authedClient(t, server)
	posts, err := client.Posts(context.Background(), PostFilter{Category: "tech-talk", Search: "gpu", Author: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"tech-talk"}, gotQuery["category"])
	assert.Equal(t, []string{"gpu"}, gotQuery["search"])
	assert.Equal(t, []string{"4"}, gotQuery["author"])
	assert.Equal(t, []string{"-created_at"}, gotQuery["ordering"])

	// Paginated payloads unwrap transparently
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Title)
}

func TestListToleratesBareArrays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"General","slug":"general"}]`))
	}))
	defer server.Close()

	client := authedClient(t, server)
	cats, err := client.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "general", cats[0].Slug)
}

func TestVoteBodies(t *testing.T) {
	type call struct {
		path  string
		value int
	}
	var calls []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body voteRequest
		json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.URL.Path, body.Value})
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := authedClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.VotePost(ctx, 12, 1))
	require.NoError(t, client.VotePost(ctx, 12, -1))
	require.NoError(t, client.VotePost(ctx, 12, 0)) // unvote confirms too
	require.NoError(t, client.VoteComment(ctx, 7, 1))

	assert.Equal(t, []call{
		{"/discussions/posts/12/vote/", 1},
		{"/discussions/posts/12/vote/", -1},
		{"/discussions/posts/12/vote/", 0},
		{"/discussions/comments/7/vote/", 1},
	}, calls)
}

func TestAddCommentAndReply(t *testing.T) {
	var bodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.Write([]byte(`{"id":3,"content":"ok"}`))
	}))
	defer server.Close()

	client := authedClient(t, server)
	ctx := context.Background()

	_, err := client.AddComment(ctx, 5, "top level", nil)
	require.NoError(t, err)

	parent := 3
	_, err = client.AddComment(ctx, 5, "a reply", &parent)
	require.NoError(t, err)

	assert.NotContains(t, bodies[0], "parent")
	assert.EqualValues(t, 3, bodies[1]["parent"])
}

func TestMessagingBodies(t *testing.T) {
	var paths []string
	var lastBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.Method == http.MethodPost {
			json.NewDecoder(r.Body).Decode(&lastBody)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := authedClient(t, server)
	ctx := context.Background()

	_, err := client.StartConversation(ctx, 42)
	require.NoError(t, err)
	assert.EqualValues(t, 42, lastBody["recipient_id"])

	_, err = client.SendMessage(ctx, 8, "salaam")
	require.NoError(t, err)
	assert.EqualValues(t, 8, lastBody["conversation_id"])
	assert.Equal(t, "salaam", lastBody["content"])

	_, err = client.SendChatRoomMessage(ctx, 2, "hello room")
	require.NoError(t, err)
	assert.Equal(t, "/messaging/chat-rooms/2/send/", paths[len(paths)-1])
}

func TestReportLifecycle(t *testing.T) {
	var lastBody map[string]any
	var gotStatus string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reports/":
			gotStatus = r.URL.Query().Get("status")
			w.Write([]byte(`[{"id":1,"status":"pending","reason":"spam links"}]`))
		default:
			json.NewDecoder(r.Body).Decode(&lastBody)
			w.Write([]byte(`{"id":1,"status":"pending"}`))
		}
	}))
	defer server.Close()

	client := authedClient(t, server)
	ctx := context.Background()

	reports, err := client.Reports(ctx, model.ReportPending)
	require.NoError(t, err)
	assert.Equal(t, "pending", gotStatus)
	require.Len(t, reports, 1)

	_, err = client.CreateReport(ctx, model.NewReport{PostID: 9, Reason: "spam links", Type: model.ReportSpam})
	require.NoError(t, err)
	assert.EqualValues(t, 9, lastBody["post_id"])
	assert.Equal(t, "spam", lastBody["report_type"])

	require.NoError(t, client.UpdateReport(ctx, 1, model.ReportResolved, "removed the post"))
	assert.Equal(t, "resolved", lastBody["status"])
	assert.Equal(t, "removed the post", lastBody["moderator_notes"])
}

func TestSearchUsersNormalizesQuery(t *testing.T) {
	var gotQ string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		w.Write([]byte(`{"results":[{"id":1,"email":"ali@pucit.edu.pk"}]}`))
	}))
	defer server.Close()

	client := authedClient(t, server)
	users, err := client.SearchUsers(context.Background(), "  Ali  Raza ")
	require.NoError(t, err)
	assert.Equal(t, "ali raza", gotQ)
	require.Len(t, users, 1)

	// Blank queries short-circuit without a network call
	users, err = client.SearchUsers(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, users)
}
