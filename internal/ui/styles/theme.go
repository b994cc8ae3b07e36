// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style
	Brand  lipgloss.Style
	Tab    lipgloss.Style
	TabOn  lipgloss.Style

	// ==========================================================================
	// LIST STYLES
	// ==========================================================================

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListTitle    lipgloss.Style
	ListMeta     lipgloss.Style

	// ==========================================================================
	// POST AND COMMENT STYLES
	// ==========================================================================

	PostTitle     lipgloss.Style
	PostBody      lipgloss.Style
	Author        lipgloss.Style
	Timestamp     lipgloss.Style
	CategoryBadge lipgloss.Style
	PinnedBadge   lipgloss.Style
	VoteUp        lipgloss.Style
	VoteDown      lipgloss.Style
	VoteNone      lipgloss.Style
	CommentIndent lipgloss.Style

	// ==========================================================================
	// MESSAGING STYLES
	// ==========================================================================

	BubbleMine   lipgloss.Style
	BubbleTheirs lipgloss.Style
	UnreadBadge  lipgloss.Style

	// ==========================================================================
	// MODERATION STYLES
	// ==========================================================================

	ReportPending   lipgloss.Style
	ReportResolved  lipgloss.Style
	ReportDismissed lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputLabel   lipgloss.Style
	InputBox     lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	ErrorText    lipgloss.Style
	SuccessText  lipgloss.Style
	WarningText  lipgloss.Style
	MutedText    lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme builds the theme for the detected terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}

	t.App = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.Brand = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Tab = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)
	t.TabOn = lipgloss.NewStyle().Foreground(Purple).Bold(true).Padding(0, 1).Underline(true)

	t.ListItem = lipgloss.NewStyle().PaddingLeft(2)
	t.ListSelected = lipgloss.NewStyle().
		PaddingLeft(0).
		Foreground(Purple).
		Bold(true).
		SetString("> ")
	t.ListTitle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.ListMeta = lipgloss.NewStyle().Foreground(TextMuted)

	t.PostTitle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.PostBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Author = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.CategoryBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)
	t.PinnedBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Amber).
		Padding(0, 1)
	t.VoteUp = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.VoteDown = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.VoteNone = lipgloss.NewStyle().Foreground(TextMuted)
	t.CommentIndent = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1).
		MarginLeft(2)

	t.BubbleMine = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(PurpleDeep).
		Padding(0, 1)
	t.BubbleTheirs = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 1)
	t.UnreadBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Padding(0, 1).
		Bold(true)

	t.ReportPending = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.ReportResolved = lipgloss.NewStyle().Foreground(Emerald)
	t.ReportDismissed = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
	t.SuccessText = lipgloss.NewStyle().Foreground(Emerald)
	t.WarningText = lipgloss.NewStyle().Foreground(Amber)
	t.MutedText = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	return t
}
