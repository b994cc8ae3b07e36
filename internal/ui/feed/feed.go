// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feed implements the post list view: category tabs, search,
// and inline voting.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/config"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/ui/components"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
	"github.com/jeranaias/talk-tui/internal/util"
	"github.com/jeranaias/talk-tui/internal/vote"
)

// =============================================================================
// MESSAGES
// =============================================================================

// OpenPostMsg asks the app to open the post detail view.
type OpenPostMsg struct{ PostID int }

// ComposeMsg asks the app to open the post composer.
type ComposeMsg struct{}

// AuthRequiredMsg asks the app to redirect to the login view.
type AuthRequiredMsg struct{ Reason string }

// ErrMsg surfaces a background failure to the app's toast stack.
type ErrMsg struct{ Err error }

type loadedMsg struct {
	posts      []model.Post
	categories []model.Category
	err        error
}

type voteSettledMsg struct {
	postID int
	err    error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the feed view state.
type Model struct {
	client *api.Client
	theme  *styles.Theme
	ui     config.UIConfig

	posts      []model.Post
	categories []model.Category
	votes      map[int]*vote.Controller

	cursor   int
	catIndex int // 0 = all categories
	search   textinput.Model
	filtered bool
	loading  bool
	loader   *components.Loader
	width    int
	height   int
}

// timeNow is stubbed in tests.
var timeNow = time.Now

// New creates the feed view.
func New(client *api.Client, theme *styles.Theme, ui config.UIConfig) *Model {
	search := textinput.New()
	search.Placeholder = "search posts"
	search.CharLimit = 120
	search.Width = 32
	return &Model{
		client: client,
		theme:  theme,
		ui:     ui,
		votes:  map[int]*vote.Controller{},
		search: search,
		loader: components.NewLoader(theme),
	}
}

// SetSize stores the available render size.
func (m *Model) SetSize(w, h int) { m.width, m.height = w, h }

// Init loads the feed.
func (m *Model) Init() tea.Cmd { return m.reload() }

// Reload refetches the feed with the current filters.
func (m *Model) Reload() tea.Cmd { return m.reload() }

func (m *Model) reload() tea.Cmd {
	m.loading = true
	filter := m.filter()
	fetch := func() tea.Msg {
		ctx := context.Background()
		var msg loadedMsg
		msg.categories, msg.err = m.client.Categories(ctx)
		if msg.err == nil {
			msg.posts, msg.err = m.client.Posts(ctx, filter)
		}
		return msg
	}
	return tea.Batch(m.loader.Start("loading posts"), fetch)
}

func (m *Model) filter() api.PostFilter {
	var f api.PostFilter
	if m.catIndex > 0 && m.catIndex <= len(m.categories) {
		f.Category = m.categories[m.catIndex-1].Slug
	}
	if q := strings.TrimSpace(m.search.Value()); q != "" {
		f.Search = q
	}
	return f
}

// controller returns the vote controller for a post, seeding it from
// the server-confirmed state on first use.
func (m *Model) controller(p *model.Post) *vote.Controller {
	c, ok := m.votes[p.ID]
	if !ok {
		c = vote.New(p.UserVote, p.UpvotesCount)
		m.votes[p.ID] = c
	}
	return c
}

// Update handles messages for the feed view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		m.loader.Stop()
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.categories = msg.categories
		m.posts = msg.posts
		if m.cursor >= len(m.posts) {
			m.cursor = 0
		}
		// Re-seed controllers from server truth
		m.votes = map[int]*vote.Controller{}
		return m, nil

	case voteSettledMsg:
		c, ok := m.votes[msg.postID]
		if !ok {
			return m, nil
		}
		if msg.err != nil {
			c.Rollback()
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		c.Confirm()
		return m, nil

	case tea.KeyMsg:
		if m.search.Focused() {
			switch msg.String() {
			case "enter":
				m.search.Blur()
				m.filtered = true
				return m, m.reload()
			case "esc":
				m.search.Blur()
				m.search.SetValue("")
				if m.filtered {
					m.filtered = false
					return m, m.reload()
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.posts)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g":
			m.cursor = 0
		case "G":
			if len(m.posts) > 0 {
				m.cursor = len(m.posts) - 1
			}
		case "h", "left":
			m.catIndex = (m.catIndex + len(m.categories)) % (len(m.categories) + 1)
			return m, m.reload()
		case "l", "right":
			m.catIndex = (m.catIndex + 1) % (len(m.categories) + 1)
			return m, m.reload()
		case "/":
			m.search.Focus()
			return m, textinput.Blink
		case "u":
			return m, m.voteSelected(vote.Up)
		case "d":
			return m, m.voteSelected(vote.Down)
		case "n":
			return m, func() tea.Msg { return ComposeMsg{} }
		case "r":
			return m, m.reload()
		case "enter":
			if m.cursor < len(m.posts) {
				id := m.posts[m.cursor].ID
				return m, func() tea.Msg { return OpenPostMsg{PostID: id} }
			}
		}
		return m, nil
	}
	return m, m.loader.Update(msg)
}

// voteSelected applies an optimistic vote to the post under the cursor
// and dispatches the confirmation.
func (m *Model) voteSelected(direction int) tea.Cmd {
	if m.cursor >= len(m.posts) {
		return nil
	}
	if !m.client.Session().Authenticated() {
		return func() tea.Msg {
			return AuthRequiredMsg{Reason: "sign in to vote"}
		}
	}

	p := &m.posts[m.cursor]
	c := m.controller(p)
	target, err := c.Apply(direction)
	if err != nil {
		// In flight or bad input; ignore the keypress
		return nil
	}

	postID := p.ID
	return func() tea.Msg {
		err := m.client.VotePost(context.Background(), postID, target)
		return voteSettledMsg{postID: postID, err: err}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the feed.
func (m *Model) View() string {
	var b strings.Builder

	// Category tabs
	tabs := []string{m.tabLabel(0, "All")}
	for i, cat := range m.categories {
		tabs = append(tabs, m.tabLabel(i+1, cat.Icon()+" "+cat.Name))
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")

	if m.search.Focused() || m.filtered {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.loader.View())
	case len(m.posts) == 0:
		b.WriteString(m.theme.MutedText.Render("no posts here yet"))
	default:
		maxRows := m.height - 5
		start := 0
		if maxRows > 0 && m.cursor >= maxRows {
			start = m.cursor - maxRows + 1
		}
		for i := start; i < len(m.posts); i++ {
			if maxRows > 0 && i-start >= maxRows {
				break
			}
			b.WriteString(m.renderPost(i))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) tabLabel(index int, label string) string {
	if index == m.catIndex {
		return m.theme.TabOn.Render(label)
	}
	return m.theme.Tab.Render(label)
}

func (m *Model) renderPost(i int) string {
	p := &m.posts[i]
	value, count := m.controller(p).State()

	voteStyle := m.theme.VoteNone
	marker := " "
	switch value {
	case vote.Up:
		voteStyle, marker = m.theme.VoteUp, "▲"
	case vote.Down:
		voteStyle, marker = m.theme.VoteDown, "▼"
	}
	score := voteStyle.Render(fmt.Sprintf("%s %3d", marker, count))

	title := p.Title
	if maxw := m.width - 30; maxw > 10 {
		title = util.TruncateWidth(title, maxw)
	}
	line := score + " " + m.theme.ListTitle.Render(title)
	if p.IsPinned {
		line += " " + m.theme.PinnedBadge.Render("pinned")
	}

	if m.ui.CompactFeed {
		// One line per post: author and age, no meta row
		line += " " + m.theme.ListMeta.Render(
			p.Author.DisplayName()+" · "+m.age(p.CreatedAt))
		if i == m.cursor {
			return m.theme.ListSelected.String() + line
		}
		return m.theme.ListItem.Render(line)
	}

	meta := fmt.Sprintf("%s · %s · %d comments",
		p.Author.DisplayName(), m.age(p.CreatedAt), p.CommentsCount)
	if p.Category != nil {
		meta = p.Category.Name + " · " + meta
	}

	body := line + "\n      " + m.theme.ListMeta.Render(meta)
	if i == m.cursor {
		return m.theme.ListSelected.String() + body
	}
	return m.theme.ListItem.Render(body)
}

// age formats a post's creation time, appending the absolute timestamp
// when the config asks for it.
func (m *Model) age(at time.Time) string {
	ago := model.TimeAgo(at, timeNow())
	if m.ui.ShowTimestamps {
		return ago + " (" + at.Local().Format("Jan 2 15:04") + ")"
	}
	return ago
}
