// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package moderation implements the moderator report queue: filtering
// by status, resolving and dismissing reports with notes, and removing
// reported posts.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
	"github.com/jeranaias/talk-tui/internal/util"
)

// timeNow is stubbed in tests.
var timeNow = time.Now

// =============================================================================
// MESSAGES
// =============================================================================

// ErrMsg surfaces a background failure.
type ErrMsg struct{ Err error }

// NoticeMsg surfaces a success message.
type NoticeMsg struct{ Text string }

// OpenPostMsg asks the app to open the reported post.
type OpenPostMsg struct{ PostID int }

type loadedMsg struct {
	reports []model.Report
	err     error
}

type updatedMsg struct {
	action string
	err    error
}

// =============================================================================
// MODEL
// =============================================================================

// statusFilters cycles: all, pending, resolved, dismissed.
var statusFilters = []model.ReportStatus{
	"", model.ReportPending, model.ReportResolved, model.ReportDismissed,
}

// Model is the moderation queue state.
type Model struct {
	client *api.Client
	theme  *styles.Theme

	reports     []model.Report
	counts      map[model.ReportStatus]int
	cursor      int
	filterIndex int

	// pendingStatus is the triage decision awaiting notes
	pendingStatus model.ReportStatus
	notes         textinput.Model
	noting        bool

	loading bool
	width   int
	height  int
}

// New creates the moderation view.
func New(client *api.Client, theme *styles.Theme) *Model {
	notes := textinput.New()
	notes.Placeholder = "moderator notes (optional)"
	notes.CharLimit = 500
	return &Model{client: client, theme: theme, notes: notes}
}

// SetSize stores the available render size.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.notes.Width = w - 8
}

// Init loads the report queue.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	status := statusFilters[m.filterIndex]
	return func() tea.Msg {
		reports, err := m.client.Reports(context.Background(), status)
		return loadedMsg{reports: reports, err: err}
	}
}

// Update handles messages for the moderation view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		m.reports = msg.reports
		m.counts = model.CountByStatus(msg.reports)
		if m.cursor >= len(m.reports) {
			m.cursor = 0
		}
		return m, nil

	case updatedMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: msg.err} }
		}
		action := msg.action
		return m, tea.Batch(m.fetch(), func() tea.Msg {
			return NoticeMsg{Text: "report " + action}
		})

	case tea.KeyMsg:
		if m.noting {
			return m.updateNotes(msg)
		}
		return m.updateQueue(msg)
	}
	return m, nil
}

func (m *Model) updateQueue(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.reports)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "h", "left":
		m.filterIndex = (m.filterIndex + len(statusFilters) - 1) % len(statusFilters)
		return m, m.fetch()
	case "l", "right", "tab":
		m.filterIndex = (m.filterIndex + 1) % len(statusFilters)
		return m, m.fetch()
	case "r":
		return m, m.fetch()
	case "a":
		return m, m.beginTriage(model.ReportResolved)
	case "x":
		return m, m.beginTriage(model.ReportDismissed)
	case "enter":
		if m.cursor < len(m.reports) && m.reports[m.cursor].PostID != 0 {
			postID := m.reports[m.cursor].PostID
			return m, func() tea.Msg { return OpenPostMsg{PostID: postID} }
		}
	}
	return m, nil
}

// beginTriage opens the notes prompt for a resolve/dismiss decision.
func (m *Model) beginTriage(status model.ReportStatus) tea.Cmd {
	if m.cursor >= len(m.reports) {
		return nil
	}
	if m.reports[m.cursor].Status != model.ReportPending {
		return func() tea.Msg {
			return ErrMsg{Err: fmt.Errorf("report already triaged")}
		}
	}
	m.pendingStatus = status
	m.noting = true
	m.notes.SetValue("")
	m.notes.Focus()
	return textinput.Blink
}

func (m *Model) updateNotes(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.noting = false
		m.notes.Blur()
		return m, nil
	case "enter":
		m.noting = false
		m.notes.Blur()
		if m.cursor >= len(m.reports) {
			return m, nil
		}
		id := m.reports[m.cursor].ID
		status := m.pendingStatus
		notes := strings.TrimSpace(m.notes.Value())
		return m, func() tea.Msg {
			err := m.client.UpdateReport(context.Background(), id, status, notes)
			return updatedMsg{action: string(status), err: err}
		}
	}
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the report queue.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("Moderation"))

	if len(m.counts) > 0 {
		b.WriteString("  " + m.theme.ListMeta.Render(fmt.Sprintf(
			"pending %d · resolved %d · dismissed %d",
			m.counts[model.ReportPending],
			m.counts[model.ReportResolved],
			m.counts[model.ReportDismissed])))
	}
	b.WriteString("\n")

	filterName := "all"
	if statusFilters[m.filterIndex] != "" {
		filterName = string(statusFilters[m.filterIndex])
	}
	b.WriteString(m.theme.ListMeta.Render("filter: " + filterName + "  (tab to cycle)"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.theme.MutedText.Render("loading reports..."))
	case len(m.reports) == 0:
		b.WriteString(m.theme.MutedText.Render("queue is clear"))
	default:
		for i, r := range m.reports {
			b.WriteString(m.renderReport(&r, i == m.cursor))
		}
	}

	if m.noting {
		b.WriteString("\n")
		b.WriteString(m.theme.InputLabel.Render(string(m.pendingStatus) + " with notes:"))
		b.WriteString("\n")
		b.WriteString(m.notes.View())
		b.WriteString("\n")
		b.WriteString(m.theme.MutedText.Render("enter confirm  esc cancel"))
	} else if len(m.reports) > 0 {
		b.WriteString("\n")
		b.WriteString(m.theme.MutedText.Render("a resolve  x dismiss  enter open post"))
	}
	return b.String()
}

func (m *Model) renderReport(r *model.Report, selected bool) string {
	var badge string
	switch r.Status {
	case model.ReportPending:
		badge = m.theme.ReportPending.Render("pending")
	case model.ReportResolved:
		badge = m.theme.ReportResolved.Render("resolved")
	default:
		badge = m.theme.ReportDismissed.Render("dismissed")
	}

	subject := fmt.Sprintf("post #%d", r.PostID)
	if r.Post != nil {
		subject = util.TruncateWidth(r.Post.Title, 48)
	} else if r.CommentID != 0 {
		subject = fmt.Sprintf("comment #%d", r.CommentID)
	}

	line := fmt.Sprintf("%s %s %s\n      %s · %s · %s\n",
		badge,
		m.theme.ListTitle.Render(subject),
		m.theme.ListMeta.Render("["+string(r.Type)+"]"),
		util.TruncateWidth(util.FirstLine(r.Reason), 60),
		r.Reporter.DisplayName(),
		model.TimeAgo(r.CreatedAt, timeNow()))

	if selected {
		return m.theme.ListSelected.String() + line
	}
	return m.theme.ListItem.Render(line) + "\n"
}
