// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/storage"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

// =============================================================================
// COMPOSER MESSAGES
// =============================================================================

// PostCreatedMsg is emitted after the new post is accepted.
type PostCreatedMsg struct{ PostID int }

// ComposeClosedMsg is emitted when the composer is dismissed.
type ComposeClosedMsg struct{}

type categoriesMsg struct {
	categories []model.Category
	err        error
}

type createdMsg struct {
	post *model.Post
	err  error
}

// =============================================================================
// COMPOSER
// =============================================================================

// Composer is the new-post form.
type Composer struct {
	client *api.Client
	theme  *styles.Theme
	store  *storage.Store // nil when drafts are disabled

	categories []model.Category
	catIndex   int

	title   textinput.Model
	content textarea.Model
	onTitle bool
	busy    bool
	errText string
	width   int
	height  int
}

// NewComposer creates the post composer and restores any saved draft.
func NewComposer(client *api.Client, theme *styles.Theme, store *storage.Store) *Composer {
	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 200

	content := textarea.New()
	content.Placeholder = "write your post (markdown works)"
	content.SetHeight(10)
	content.CharLimit = 20000

	c := &Composer{
		client:  client,
		theme:   theme,
		store:   store,
		title:   title,
		content: content,
		onTitle: true,
	}
	c.restoreDraft()
	c.title.Focus()
	return c
}

// SetSize stores the available render size.
func (c *Composer) SetSize(w, h int) {
	c.width, c.height = w, h
	c.title.Width = w - 8
	c.content.SetWidth(w - 8)
}

// Init loads the category list for the picker.
func (c *Composer) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		categories, err := c.client.Categories(context.Background())
		return categoriesMsg{categories: categories, err: err}
	})
}

// Update handles composer messages.
func (c *Composer) Update(msg tea.Msg) (*Composer, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesMsg:
		if msg.err == nil {
			c.categories = msg.categories
			c.clampCategory()
		}
		return c, nil

	case createdMsg:
		c.busy = false
		if msg.err != nil {
			c.errText = msg.err.Error()
			return c, nil
		}
		c.discardDraft()
		postID := msg.post.ID
		return c, func() tea.Msg { return PostCreatedMsg{PostID: postID} }

	case tea.KeyMsg:
		if c.busy {
			return c, nil
		}
		switch msg.String() {
		case "esc":
			c.saveDraft()
			return c, func() tea.Msg { return ComposeClosedMsg{} }
		case "tab":
			c.onTitle = !c.onTitle
			if c.onTitle {
				c.content.Blur()
				c.title.Focus()
			} else {
				c.title.Blur()
				c.content.Focus()
			}
			return c, nil
		case "ctrl+j":
			c.catIndex = (c.catIndex + 1) % maxInt(1, len(c.categories))
			return c, nil
		case "ctrl+s":
			return c, c.submit()
		}
		var cmd tea.Cmd
		if c.onTitle {
			c.title, cmd = c.title.Update(msg)
		} else {
			c.content, cmd = c.content.Update(msg)
		}
		return c, cmd
	}
	return c, nil
}

func (c *Composer) clampCategory() {
	if c.catIndex >= len(c.categories) {
		c.catIndex = 0
	}
}

func (c *Composer) submit() tea.Cmd {
	title := strings.TrimSpace(c.title.Value())
	content := strings.TrimSpace(c.content.Value())
	switch {
	case title == "":
		c.errText = "a title is required"
		return nil
	case content == "":
		c.errText = "the post needs some content"
		return nil
	case len(c.categories) == 0:
		c.errText = "categories are still loading"
		return nil
	}
	c.errText = ""
	c.busy = true
	np := model.NewPost{
		Title:    title,
		Content:  content,
		Category: c.categories[c.catIndex].ID,
	}
	return func() tea.Msg {
		post, err := c.client.CreatePost(context.Background(), np)
		return createdMsg{post: post, err: err}
	}
}

func (c *Composer) restoreDraft() {
	if c.store == nil {
		return
	}
	if d, err := c.store.Draft(storage.DraftPost, ""); err == nil {
		c.title.SetValue(d.Title)
		c.content.SetValue(d.Content)
	}
}

func (c *Composer) saveDraft() {
	if c.store == nil {
		return
	}
	category := ""
	if len(c.categories) > 0 {
		category = c.categories[c.catIndex].Slug
	}
	c.store.SaveDraft(storage.Draft{
		Kind:     storage.DraftPost,
		Title:    strings.TrimSpace(c.title.Value()),
		Category: category,
		Content:  strings.TrimSpace(c.content.Value()),
	})
}

func (c *Composer) discardDraft() {
	if c.store == nil {
		return
	}
	c.store.DeleteDraft(storage.DraftPost, "")
}

// View renders the composer.
func (c *Composer) View() string {
	var b strings.Builder
	b.WriteString(c.theme.Brand.Render("New post"))
	b.WriteString("\n\n")

	category := "(loading)"
	if len(c.categories) > 0 {
		cat := c.categories[c.catIndex]
		category = cat.Icon() + " " + cat.Name
	}
	b.WriteString(c.theme.InputLabel.Render("Category: "))
	b.WriteString(c.theme.CategoryBadge.Render(category))
	b.WriteString(c.theme.MutedText.Render("  (ctrl+j to change)"))
	b.WriteString("\n\n")

	b.WriteString(c.title.View())
	b.WriteString("\n\n")
	b.WriteString(c.content.View())
	b.WriteString("\n")

	if c.errText != "" {
		b.WriteString(c.theme.ErrorText.Render("! " + c.errText))
		b.WriteString("\n")
	}
	if c.busy {
		b.WriteString(c.theme.MutedText.Render("posting..."))
	} else {
		b.WriteString(c.theme.MutedText.Render("ctrl+s publish  tab switch field  esc save draft & close"))
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
