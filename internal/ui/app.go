// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui wires the views into the root bubbletea model: tab
// routing, the status bar, toasts, the idle timeout, and the redirect
// to the login view whenever an action needs a signed-in account.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/config"
	"github.com/jeranaias/talk-tui/internal/session"
	"github.com/jeranaias/talk-tui/internal/storage"
	"github.com/jeranaias/talk-tui/internal/ui/chatroom"
	"github.com/jeranaias/talk-tui/internal/ui/components"
	"github.com/jeranaias/talk-tui/internal/ui/feed"
	"github.com/jeranaias/talk-tui/internal/ui/login"
	"github.com/jeranaias/talk-tui/internal/ui/messages"
	"github.com/jeranaias/talk-tui/internal/ui/moderation"
	"github.com/jeranaias/talk-tui/internal/ui/notices"
	"github.com/jeranaias/talk-tui/internal/ui/postview"
	"github.com/jeranaias/talk-tui/internal/ui/styles"
)

// =============================================================================
// EXTERNAL MESSAGES
// =============================================================================

// SessionExpiredMsg is sent from outside the program when the gateway
// tears the session down.
type SessionExpiredMsg struct{}

// UnreadMsg updates the unread notification badge from the background
// poller.
type UnreadMsg struct{ Unread int }

// idleTickMsg drives the idle-timeout check.
type idleTickMsg struct{}

const idleCheckInterval = 30 * time.Second

// =============================================================================
// VIEWS
// =============================================================================

type viewID int

const (
	viewLogin viewID = iota
	viewFeed
	viewPost
	viewCompose
	viewMessages
	viewChat
	viewNotices
	viewModeration
)

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root model.
type App struct {
	client *api.Client
	cfg    *config.Config
	theme  *styles.Theme
	store  *storage.Store // nil when drafts are disabled
	idle   *session.Manager

	active viewID
	// back is where esc from the login or post view returns to
	back viewID

	login      *login.Model
	feed       *feed.Model
	post       *postview.Model
	compose    *feed.Composer
	messages   *messages.Model
	chat       *chatroom.Model
	notices    *notices.Model
	moderation *moderation.Model

	status *components.StatusBar
	toasts *components.Toasts

	width  int
	height int
}

// NewApp builds the root model. store may be nil.
func NewApp(client *api.Client, cfg *config.Config, store *storage.Store) *App {
	theme := styles.NewTheme()

	idleCfg := session.DefaultConfig()
	if cfg.Session.IdleTimeoutMinutes >= 0 {
		idleCfg.Timeout = time.Duration(cfg.Session.IdleTimeoutMinutes) * time.Minute
	}
	idle := session.NewManager(idleCfg)

	a := &App{
		client: client,
		cfg:    cfg,
		theme:  theme,
		store:  store,
		idle:   idle,
		active: viewFeed,
		back:   viewFeed,
		login:  login.New(client, theme),
		feed:   feed.New(client, theme, cfg.UI),
		status: components.NewStatusBar(theme),
		toasts: components.NewToasts(theme),
	}
	a.messages = messages.New(client, theme, cfg.Poll.ConversationInterval())
	a.chat = chatroom.New(client, theme, cfg.Poll.ChatRoomInterval())
	a.notices = notices.New(client, theme)
	a.moderation = moderation.New(client, theme)

	if client.Session().Authenticated() {
		a.refreshIdentity()
	} else {
		a.active = viewLogin
	}
	return a
}

// Init starts the initial view and the idle ticker.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.idleTick()}
	if a.active == viewLogin {
		cmds = append(cmds, a.login.Init())
	} else {
		// Resolve who the stored credentials belong to
		cmds = append(cmds, a.feed.Init(), a.fetchActor())
	}
	return tea.Batch(cmds...)
}

type actorLoadedMsg struct{ err error }

func (a *App) fetchActor() tea.Cmd {
	return func() tea.Msg {
		_, err := a.client.Me(context.Background())
		return actorLoadedMsg{err: err}
	}
}

func (a *App) idleTick() tea.Cmd {
	return tea.Tick(idleCheckInterval, func(time.Time) tea.Msg { return idleTickMsg{} })
}

// Update is the root message loop.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.status.SetWidth(msg.Width)
		body := msg.Height - 2
		for _, v := range []interface{ SetSize(w, h int) }{
			a.login, a.feed, a.messages, a.chat, a.notices, a.moderation,
		} {
			v.SetSize(msg.Width, body)
		}
		if a.post != nil {
			a.post.SetSize(msg.Width, body)
		}
		if a.compose != nil {
			a.compose.SetSize(msg.Width, body)
		}
		return a, nil

	case tea.KeyMsg:
		a.idle.RecordActivity()
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+b":
			return a, a.switchTo(viewFeed)
		case "ctrl+p":
			return a, a.switchTo(viewMessages)
		case "ctrl+g":
			return a, a.switchTo(viewChat)
		case "ctrl+n":
			return a, a.switchTo(viewNotices)
		case "ctrl+o":
			if a.client.Session().CanModerate() {
				return a, a.switchTo(viewModeration)
			}
			return a, a.toasts.Error("moderator access required")
		}

	case idleTickMsg:
		if !a.idle.Check() && a.client.Session().Authenticated() {
			a.signOut("signed out after inactivity")
			return a, a.login.Init()
		}
		if remaining := a.idle.RemainingTime(); remaining > 0 && remaining <= 2*time.Minute {
			a.status.Flash("signing out soon, press any key to stay", false)
		} else {
			a.status.ClearFlash()
		}
		return a, a.idleTick()

	case actorLoadedMsg:
		if msg.err == nil {
			a.refreshIdentity()
		}
		return a, nil

	case SessionExpiredMsg:
		a.signOut("your session expired, please sign in again")
		return a, a.login.Init()

	case UnreadMsg:
		a.status.SetUnread(msg.Unread)
		return a, nil

	case components.ToastExpiredMsg:
		a.toasts.Expire(msg)
		return a, nil

	// View intents
	case login.SignedInMsg:
		a.refreshIdentity()
		a.active = a.back
		if a.active == viewLogin {
			a.active = viewFeed
		}
		return a, tea.Batch(a.reloadActive(), a.toasts.Success(
			"welcome back, "+msg.User.DisplayName()))

	case feed.OpenPostMsg:
		return a, a.openPost(msg.PostID, viewFeed)
	case notices.OpenPostMsg:
		return a, a.openPost(msg.PostID, viewNotices)
	case moderation.OpenPostMsg:
		return a, a.openPost(msg.PostID, viewModeration)

	case feed.ComposeMsg:
		if !a.client.Session().Authenticated() {
			return a, a.redirectToLogin("sign in to post")
		}
		a.compose = feed.NewComposer(a.client, a.theme, a.store)
		a.compose.SetSize(a.width, a.height-2)
		a.active = viewCompose
		return a, a.compose.Init()

	case feed.PostCreatedMsg:
		a.compose = nil
		a.active = viewFeed
		return a, tea.Batch(a.feed.Reload(), a.toasts.Success("post published"))

	case feed.ComposeClosedMsg:
		a.compose = nil
		a.active = viewFeed
		return a, nil

	case postview.BackMsg:
		a.post = nil
		a.active = a.back
		return a, a.reloadActive()

	case feed.AuthRequiredMsg:
		return a, a.redirectToLogin(msg.Reason)
	case postview.AuthRequiredMsg:
		return a, a.redirectToLogin(msg.Reason)
	case chatroom.AuthRequiredMsg:
		return a, a.redirectToLogin(msg.Reason)

	case notices.UnreadChangedMsg:
		a.status.SetUnread(msg.Unread)
		return a, nil

	case postview.NoticeMsg:
		return a, a.toasts.Success(msg.Text)
	case moderation.NoticeMsg:
		return a, a.toasts.Success(msg.Text)

	case feed.ErrMsg:
		return a, a.toasts.Error(errText(msg.Err))
	case postview.ErrMsg:
		return a, a.toasts.Error(errText(msg.Err))
	case chatroom.ErrMsg:
		return a, a.toasts.Error(errText(msg.Err))
	case messages.ErrMsg:
		return a, a.toasts.Error(errText(msg.Err))
	case notices.ErrMsg:
		return a, a.toasts.Error(errText(msg.Err))
	case moderation.ErrMsg:
		return a, a.toasts.Error(errText(msg.Err))
	}

	return a, a.routeToActive(msg)
}

// routeToActive forwards a message to the active view only.
func (a *App) routeToActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.active {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewFeed:
		a.feed, cmd = a.feed.Update(msg)
	case viewPost:
		if a.post != nil {
			a.post, cmd = a.post.Update(msg)
		}
	case viewCompose:
		if a.compose != nil {
			a.compose, cmd = a.compose.Update(msg)
		}
	case viewMessages:
		a.messages, cmd = a.messages.Update(msg)
	case viewChat:
		a.chat, cmd = a.chat.Update(msg)
	case viewNotices:
		a.notices, cmd = a.notices.Update(msg)
	case viewModeration:
		a.moderation, cmd = a.moderation.Update(msg)
	}
	return cmd
}

func (a *App) switchTo(v viewID) tea.Cmd {
	if a.active == v {
		return nil
	}
	a.closePolling()
	a.active = v
	a.back = v
	a.updateShortcuts()
	return a.reloadActive()
}

func (a *App) reloadActive() tea.Cmd {
	switch a.active {
	case viewFeed:
		return a.feed.Reload()
	case viewPost:
		if a.post != nil {
			return a.post.Init()
		}
	case viewCompose:
		if a.compose != nil {
			return a.compose.Init()
		}
	case viewMessages:
		return a.messages.Init()
	case viewChat:
		return a.chat.Init()
	case viewNotices:
		return a.notices.Init()
	case viewModeration:
		return a.moderation.Init()
	}
	return nil
}

// openPost switches to the detail view and records the visit locally.
func (a *App) openPost(postID int, from viewID) tea.Cmd {
	a.back = from
	a.post = postview.New(a.client, a.theme, a.store, postID)
	a.post.SetSize(a.width, a.height-2)
	a.active = viewPost
	return a.post.Init()
}

// closePolling stops the poll chains owned by the live views. Routed
// messages only reach the active view, so a chain left running across a
// view switch would silently die at the first dropped tick.
func (a *App) closePolling() {
	switch a.active {
	case viewChat:
		a.chat.Close()
	case viewMessages:
		a.messages.Close()
	}
}

func (a *App) redirectToLogin(reason string) tea.Cmd {
	a.closePolling()
	a.back = a.active
	a.active = viewLogin
	a.login.SetBanner(reason)
	return a.login.Init()
}

// signOut clears local credentials and returns to the login view.
func (a *App) signOut(banner string) {
	a.client.Logout()
	a.closePolling()
	a.status.SetIdentity("")
	a.status.SetUnread(0)
	a.login.SetBanner(banner)
	a.active = viewLogin
	a.back = viewFeed
}

func (a *App) refreshIdentity() {
	actor := a.client.Session().Actor()
	if actor == nil {
		a.status.SetIdentity("")
		return
	}
	id := actor.DisplayName()
	if a.client.Session().CanModerate() {
		id += " (mod)"
	}
	a.status.SetIdentity(id)
}

func (a *App) updateShortcuts() {
	shortcuts := []components.Shortcut{
		{Key: "^b", Desc: "feed"},
		{Key: "^p", Desc: "dms"},
		{Key: "^g", Desc: "chat"},
		{Key: "^n", Desc: "alerts"},
	}
	if a.client.Session().CanModerate() {
		shortcuts = append(shortcuts, components.Shortcut{Key: "^o", Desc: "mod"})
	}
	shortcuts = append(shortcuts, components.Shortcut{Key: "^c", Desc: "quit"})
	a.status.SetShortcuts(shortcuts)
}

func errText(err error) string {
	if err == nil {
		return "something went wrong"
	}
	return err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active view plus the status bar and toasts.
func (a *App) View() string {
	var body string
	switch a.active {
	case viewLogin:
		body = a.login.View()
	case viewFeed:
		body = a.feed.View()
	case viewPost:
		if a.post != nil {
			body = a.post.View()
		}
	case viewCompose:
		if a.compose != nil {
			body = a.compose.View()
		}
	case viewMessages:
		body = a.messages.View()
	case viewChat:
		body = a.chat.View()
	case viewNotices:
		body = a.notices.View()
	case viewModeration:
		body = a.moderation.View()
	}

	a.updateShortcuts()

	sections := []string{body}
	if t := a.toasts.View(); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections, a.status.View())

	if a.height > 0 {
		content := lipgloss.JoinVertical(lipgloss.Left, sections[:len(sections)-1]...)
		gap := a.height - lipgloss.Height(content) - 1
		if gap > 0 {
			content += lipgloss.NewStyle().Height(gap).Render("")
		}
		return content + "\n" + a.status.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
