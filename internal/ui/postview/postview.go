// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package postview implements the post detail view: the rendered post
// body, the threaded comments below it, voting on both, replying, and
// filing reports.
package postview

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/storage"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
	"github.com/jeranaias/talk-tui/internal/vote"
)

// timeNow is stubbed in tests.
var timeNow = time.Now

// =============================================================================
// MESSAGES
// =============================================================================

// BackMsg asks the app to return to the feed.
type BackMsg struct{}

// AuthRequiredMsg asks the app to redirect to the login view.
type AuthRequiredMsg struct{ Reason string }

// ErrMsg surfaces a background failure.
type ErrMsg struct{ Err error }

// NoticeMsg surfaces a success message.
type NoticeMsg struct{ Text string }

type loadedMsg struct {
	post     *model.Post
	comments []model.Comment
	err      error
}

type voteSettledMsg struct {
	commentID int // 0 for the post itself
	err       error
}

type commentAddedMsg struct{ err error }
type reportedMsg struct{ err error }
type deletedMsg struct{ err error }

// =============================================================================
// MODEL
// =============================================================================

type inputMode int

const (
	inputNone inputMode = iota
	inputReply
	inputReport
)

// Model is the post detail view state.
type Model struct {
	client *api.Client
	theme  *styles.Theme
	store  *storage.Store // nil when drafts are disabled

	postID   int
	post     *model.Post
	comments []model.Comment
	top      []model.Comment
	replies  map[int][]model.Comment

	postVote     *vote.Controller
	commentVotes map[int]*vote.Controller

	// cursor walks the flattened comment list; -1 selects the post.
	flat   []model.Comment
	cursor int

	mode       inputMode
	composer   textarea.Model
	replyTo    *int // parent comment when replying to a reply chain
	reportType model.ReportType

	loading bool
	width   int
	height  int
}

// New creates a post detail view for the given post.
func New(client *api.Client, theme *styles.Theme, store *storage.Store, postID int) *Model {
	composer := textarea.New()
	composer.Placeholder = "write a comment"
	composer.SetHeight(4)
	composer.CharLimit = 4000

	return &Model{
		client:       client,
		theme:        theme,
		store:        store,
		postID:       postID,
		commentVotes: map[int]*vote.Controller{},
		cursor:       -1,
		composer:     composer,
		reportType:   model.ReportSpam,
	}
}

// SetSize stores the available render size.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.composer.SetWidth(w - 6)
}

// Init loads the post and records the view in local history.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		var msg loadedMsg
		msg.post, msg.err = m.client.Post(ctx, m.postID)
		if msg.err == nil {
			msg.comments, msg.err = m.client.Comments(ctx, m.postID)
		}
		return msg
	}
}

// Update handles messages for the post view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.setContent(msg.post, msg.comments)
		return m, nil

	case voteSettledMsg:
		c := m.postVote
		if msg.commentID != 0 {
			c = m.commentVotes[msg.commentID]
		}
		if c == nil {
			return m, nil
		}
		if msg.err != nil {
			c.Rollback()
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		c.Confirm()
		return m, nil

	case commentAddedMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.discardDraft()
		return m, m.Init()

	case reportedMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		return m, func() tea.Msg {
			return NoticeMsg{Text: "report filed, a moderator will review it"}
		}

	case deletedMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		return m, func() tea.Msg { return BackMsg{} }

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateComposer(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) setContent(post *model.Post, comments []model.Comment) {
	m.post = post
	if m.store != nil {
		m.store.RecordView(post.ID, post.Title)
	}
	m.comments = comments
	m.top, m.replies = model.Thread(comments)
	m.postVote = vote.New(post.UserVote, post.UpvotesCount)
	m.commentVotes = map[int]*vote.Controller{}

	m.flat = m.flat[:0]
	for _, c := range m.top {
		m.flat = append(m.flat, c)
		m.flat = append(m.flat, m.replies[c.ID]...)
	}
	if m.cursor >= len(m.flat) {
		m.cursor = -1
	}
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return BackMsg{} }
	case "j", "down":
		if m.cursor < len(m.flat)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > -1 {
			m.cursor--
		}
	case "u":
		return m, m.voteSelected(vote.Up)
	case "d":
		return m, m.voteSelected(vote.Down)
	case "c":
		return m, m.openReply()
	case "R":
		return m, m.openReport()
	case "x":
		return m, m.deleteSelected()
	case "r":
		return m, m.Init()
	}
	return m, nil
}

// openReply opens the comment composer. Replying while a comment is
// selected nests under that comment's thread.
func (m *Model) openReply() tea.Cmd {
	if !m.client.Session().Authenticated() {
		return func() tea.Msg { return AuthRequiredMsg{Reason: "sign in to comment"} }
	}
	if m.post != nil && m.post.IsLocked {
		return func() tea.Msg {
			return ErrMsg{Err: fmt.Errorf("this post is locked")}
		}
	}
	m.mode = inputReply
	m.replyTo = nil
	if m.cursor >= 0 {
		c := m.flat[m.cursor]
		parent := c.ID
		if c.Parent != nil {
			// Replies stay one level deep; nest under the top comment
			parent = *c.Parent
		}
		m.replyTo = &parent
		m.composer.Placeholder = "reply to " + c.Author.DisplayName()
	} else {
		m.composer.Placeholder = "write a comment"
	}
	m.loadDraft()
	m.composer.Focus()
	return textarea.Blink
}

func (m *Model) openReport() tea.Cmd {
	if !m.client.Session().Authenticated() {
		return func() tea.Msg { return AuthRequiredMsg{Reason: "sign in to report content"} }
	}
	m.mode = inputReport
	m.composer.Placeholder = "why are you reporting this?"
	m.composer.SetValue("")
	m.composer.Focus()
	return textarea.Blink
}

func (m *Model) updateComposer(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == inputReply {
			m.saveDraft()
		}
		m.closeComposer()
		return m, nil
	case "tab":
		if m.mode == inputReport {
			m.reportType = nextReportType(m.reportType)
			return m, nil
		}
	case "ctrl+s", "ctrl+d":
		return m, m.submitComposer()
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m *Model) closeComposer() {
	m.mode = inputNone
	m.composer.Blur()
	m.composer.SetValue("")
}

func (m *Model) submitComposer() tea.Cmd {
	content := strings.TrimSpace(m.composer.Value())
	if content == "" {
		return nil
	}
	mode, parent, reportType := m.mode, m.replyTo, m.reportType
	m.closeComposer()

	if mode == inputReport {
		postID := m.postID
		return func() tea.Msg {
			_, err := m.client.CreateReport(context.Background(), model.NewReport{
				PostID: postID,
				Reason: content,
				Type:   reportType,
			})
			return reportedMsg{err: err}
		}
	}

	postID := m.postID
	return func() tea.Msg {
		_, err := m.client.AddComment(context.Background(), postID, content, parent)
		return commentAddedMsg{err: err}
	}
}

// voteSelected votes on the comment under the cursor, or on the post
// when no comment is selected.
func (m *Model) voteSelected(direction int) tea.Cmd {
	if m.post == nil {
		return nil
	}
	if !m.client.Session().Authenticated() {
		return func() tea.Msg { return AuthRequiredMsg{Reason: "sign in to vote"} }
	}

	if m.cursor < 0 {
		target, err := m.postVote.Apply(direction)
		if err != nil {
			return nil
		}
		postID := m.postID
		return func() tea.Msg {
			err := m.client.VotePost(context.Background(), postID, target)
			return voteSettledMsg{err: err}
		}
	}

	c := m.flat[m.cursor]
	ctrl := m.commentController(&c)
	target, err := ctrl.Apply(direction)
	if err != nil {
		return nil
	}
	commentID := c.ID
	return func() tea.Msg {
		err := m.client.VoteComment(context.Background(), commentID, target)
		return voteSettledMsg{commentID: commentID, err: err}
	}
}

func (m *Model) commentController(c *model.Comment) *vote.Controller {
	ctrl, ok := m.commentVotes[c.ID]
	if !ok {
		ctrl = vote.New(c.UserVote, c.UpvotesCount)
		m.commentVotes[c.ID] = ctrl
	}
	return ctrl
}

// deleteSelected removes the post when the viewer is the author or a
// moderator.
func (m *Model) deleteSelected() tea.Cmd {
	if m.post == nil || m.cursor >= 0 {
		return nil
	}
	sess := m.client.Session()
	actor := sess.Actor()
	isAuthor := actor != nil && m.post.Author != nil && actor.ID == m.post.Author.ID
	if !isAuthor && !sess.CanModerate() {
		return nil
	}
	postID := m.postID
	return func() tea.Msg {
		return deletedMsg{err: m.client.DeletePost(context.Background(), postID)}
	}
}

func nextReportType(t model.ReportType) model.ReportType {
	order := []model.ReportType{
		model.ReportSpam, model.ReportHarassment, model.ReportOffTopic, model.ReportOther,
	}
	for i, v := range order {
		if v == t {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// =============================================================================
// DRAFTS
// =============================================================================

func (m *Model) draftRef() string { return strconv.Itoa(m.postID) }

func (m *Model) loadDraft() {
	if m.store == nil {
		return
	}
	if d, err := m.store.Draft(storage.DraftComment, m.draftRef()); err == nil {
		m.composer.SetValue(d.Content)
	}
}

func (m *Model) saveDraft() {
	if m.store == nil {
		return
	}
	m.store.SaveDraft(storage.Draft{
		Kind:    storage.DraftComment,
		Ref:     m.draftRef(),
		Content: strings.TrimSpace(m.composer.Value()),
	})
}

func (m *Model) discardDraft() {
	if m.store == nil {
		return
	}
	m.store.DeleteDraft(storage.DraftComment, m.draftRef())
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the post and its comments.
func (m *Model) View() string {
	if m.loading || m.post == nil {
		return m.theme.MutedText.Render("loading post...")
	}

	var b strings.Builder
	p := m.post

	title := m.theme.PostTitle.Render(p.Title)
	if p.IsPinned {
		title += " " + m.theme.PinnedBadge.Render("pinned")
	}
	if p.IsLocked {
		title += " " + m.theme.WarningText.Render("locked")
	}
	b.WriteString(title)
	b.WriteString("\n")

	value, count := m.postVote.State()
	meta := fmt.Sprintf("%s %s · %s · %s",
		m.voteMarker(value, count),
		categoryName(p.Category),
		p.Author.DisplayName(),
		model.TimeAgo(p.CreatedAt, timeNow()))
	if m.cursor == -1 {
		meta = m.theme.ListSelected.String() + meta
	}
	b.WriteString(m.theme.ListMeta.Render(meta))
	b.WriteString("\n\n")

	b.WriteString(m.renderBody(p.Content))
	b.WriteString("\n")

	b.WriteString(m.theme.ListMeta.Render(fmt.Sprintf("─── %d comments ───", len(m.comments))))
	b.WriteString("\n")

	idx := 0
	for _, c := range m.top {
		b.WriteString(m.renderComment(&c, idx, false))
		idx++
		for _, r := range m.replies[c.ID] {
			b.WriteString(m.renderComment(&r, idx, true))
			idx++
		}
	}

	if m.mode != inputNone {
		b.WriteString("\n")
		if m.mode == inputReport {
			b.WriteString(m.theme.WarningText.Render("report type: "+string(m.reportType)) +
				m.theme.MutedText.Render("  (tab to change)"))
			b.WriteString("\n")
		}
		b.WriteString(m.composer.View())
		b.WriteString("\n")
		b.WriteString(m.theme.MutedText.Render("ctrl+s submit  esc cancel"))
	}
	return b.String()
}

// renderBody renders the post content as markdown, falling back to the
// raw text when rendering fails.
func (m *Model) renderBody(content string) string {
	width := m.width - 4
	if width < 20 {
		width = 72
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return m.theme.PostBody.Render(content)
	}
	out, err := r.Render(content)
	if err != nil {
		return m.theme.PostBody.Render(content)
	}
	return out
}

func (m *Model) renderComment(c *model.Comment, idx int, nested bool) string {
	value, count := m.commentController(c).State()
	selected := idx == m.cursor

	head := fmt.Sprintf("%s %s · %s",
		m.voteMarker(value, count),
		m.theme.Author.Render(c.Author.DisplayName()),
		m.theme.Timestamp.Render(model.TimeAgo(c.CreatedAt, timeNow())))
	body := head + "\n" + c.Content + "\n"

	if nested {
		body = m.theme.CommentIndent.Render(body) + "\n"
	}
	if selected {
		return m.theme.ListSelected.String() + body
	}
	return body
}

func (m *Model) voteMarker(value, count int) string {
	style := m.theme.VoteNone
	marker := "·"
	switch value {
	case vote.Up:
		style, marker = m.theme.VoteUp, "▲"
	case vote.Down:
		style, marker = m.theme.VoteDown, "▼"
	}
	return style.Render(fmt.Sprintf("%s %d", marker, count))
}

func categoryName(c *model.Category) string {
	if c == nil {
		return "uncategorized"
	}
	return c.Icon() + " " + c.Name
}
