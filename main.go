// talk TUI - a terminal client for the Talk@FCIT discussion platform.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/talk-tui/internal/cli"
	"github.com/jeranaias/talk-tui/internal/config"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/poll"
	"github.com/jeranaias/talk-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdWhoami:
		err = cli.HandleWhoami(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdPost:
		err = cli.HandlePost(args)
	case cli.CmdDrafts:
		err = cli.HandleDrafts(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "talk:", err)
		os.Exit(1)
	}
}

func runTUI(args *cli.ArgParser) error {
	client, cfg, err := cli.Bootstrap(args)
	if err != nil {
		return err
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		// The TUI still works without local drafts
		fmt.Fprintln(os.Stderr, "talk: local storage unavailable:", err)
	}
	if store != nil {
		defer store.Close()
	}

	app := ui.NewApp(client, cfg, store)
	program := tea.NewProgram(app, tea.WithAltScreen())

	// The gateway tears the session down on a failed refresh; bounce
	// the TUI to the login view when that happens mid-session.
	client.OnSessionExpired(func() {
		program.Send(ui.SessionExpiredMsg{})
	})

	// Background unread badge, refreshed off the UI loop.
	notifier := poll.New(cfg.Poll.NotificationsInterval(), func(ctx context.Context) error {
		if !client.Session().Authenticated() {
			return nil
		}
		notifications, err := client.Notifications(ctx)
		if err != nil {
			return err
		}
		program.Send(ui.UnreadMsg{Unread: model.CountUnread(notifications)})
		return nil
	})
	notifier.Start()
	defer notifier.Stop()

	// Apply config edits made outside the app without a restart.
	if path, err := config.Path(); err == nil {
		if watcher, err := config.NewWatcher(path, func(next *config.Config) {
			client.WithBaseURL(next.API.BaseURL)
		}); err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	_, err = program.Run()
	return err
}
