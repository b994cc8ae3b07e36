// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the talk command line and implements the
// non-interactive subcommands. Running talk without a subcommand
// starts the TUI.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdStatus
	CmdPost
	CmdDrafts
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

const usageText = `talk - Talk@FCIT from your terminal

Talk is a client for the FCIT discussion platform: posts, comments,
votes, direct messages, chat rooms, and moderation.

Usage:
  talk                       Start the TUI (default)
  talk login                 Sign in and store credentials
  talk logout                Sign out and clear credentials
  talk whoami                Show the signed-in account
  talk status                Check backend reachability and session
  talk post                  Compose and publish a post
  talk drafts [clear]        List or clear saved drafts
  talk history [clear]       List or clear recently viewed posts
  talk config [show|set]     Show or change configuration
  talk version               Show version
  talk help                  Show this help

Flags:
  --api URL                  Override the backend base URL
  --json                     Machine-readable output where supported

Environment:
  TALK_API_URL               Backend base URL
  TALK_CONFIG                Config file path
  NO_COLOR                   Disable colored output
`

// Parse reads os.Args and returns the command plus parsed arguments.
func Parse() (Command, *ArgParser) {
	raw := os.Args[1:]
	if len(raw) == 0 {
		return CmdTUI, NewArgParser(nil)
	}

	cmd := raw[0]
	args := NewArgParser(raw[1:])
	switch cmd {
	case "login":
		return CmdLogin, args
	case "logout":
		return CmdLogout, args
	case "whoami", "me":
		return CmdWhoami, args
	case "status", "s":
		return CmdStatus, args
	case "post":
		return CmdPost, args
	case "drafts":
		return CmdDrafts, args
	case "history":
		return CmdHistory, args
	case "config":
		return CmdConfig, args
	case "version", "-v", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		// Unknown word: run the TUI and let flags apply
		return CmdTUI, NewArgParser(raw)
	}
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// HandleVersion prints version details.
func HandleVersion() {
	fmt.Printf("talk %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
