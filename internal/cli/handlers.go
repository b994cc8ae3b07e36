// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/talk-tui/internal/api"
	"github.com/jeranaias/talk-tui/internal/auth"
	"github.com/jeranaias/talk-tui/internal/config"
	"github.com/jeranaias/talk-tui/internal/model"
	"github.com/jeranaias/talk-tui/internal/storage"
)

// =============================================================================
// BOOTSTRAP
// =============================================================================

// Bootstrap builds the config and API client shared by every
// subcommand and the TUI.
func Bootstrap(args *ArgParser) (*api.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if u := args.Flag("api"); u != "" {
		cfg.API.BaseURL = u
	}

	dir, err := config.ProfileDir()
	if err != nil {
		return nil, nil, err
	}

	var store auth.Store
	if cfg.Session.EncryptCredentials {
		env, err := auth.NewEnvelope(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("credential encryption unavailable: %w", err)
		}
		store = auth.NewEncryptedFileStore(dir, env)
	} else {
		store = auth.NewFileStore(dir)
	}

	client := api.New(cfg.API, auth.NewSession(store))
	return client, cfg, nil
}

// OpenStore opens the local draft/history database, or returns nil
// when drafts are disabled.
func OpenStore(cfg *config.Config) (*storage.Store, error) {
	if !cfg.Storage.DraftsEnabled {
		return nil, nil
	}
	dir, err := config.ProfileDir()
	if err != nil {
		return nil, err
	}
	return storage.Open(filepath.Join(dir, "talk.db"), cfg.Storage.HistoryLimit)
}

// =============================================================================
// LOGIN / LOGOUT / WHOAMI
// =============================================================================

// HandleLogin prompts for credentials and stores the token pair.
func HandleLogin(args *ArgParser) error {
	if !IsTTY() {
		return errors.New("login requires an interactive terminal")
	}
	client, _, err := Bootstrap(args)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)

	fmt.Print("password: ")
	password, err := ReadPassword()
	fmt.Println()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := client.Login(ctx, email, password); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("wrong password or email")
		}
		return err
	}
	user, err := client.Me(ctx)
	if err != nil {
		return err
	}
	Success("signed in as " + user.DisplayName())
	return nil
}

// HandleLogout clears stored credentials.
func HandleLogout(args *ArgParser) error {
	client, _, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if err := client.Logout(); err != nil {
		return err
	}
	Success("signed out")
	return nil
}

// HandleWhoami shows the signed-in account.
func HandleWhoami(args *ArgParser) error {
	client, _, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if !client.Session().Authenticated() {
		return errors.New("not signed in, run: talk login")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user, err := client.Me(ctx)
	if err != nil {
		return err
	}

	if args.BoolFlag("json") {
		return json.NewEncoder(os.Stdout).Encode(user)
	}
	fmt.Printf("%s <%s>\n", user.DisplayName(), user.Email)
	fmt.Printf("role: %s", user.Role)
	if user.Role.CanModerate() {
		fmt.Print(" (moderation access)")
	}
	fmt.Println()
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

type statusReport struct {
	BaseURL   string `json:"base_url"`
	Reachable bool   `json:"reachable"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
	SignedIn  bool   `json:"signed_in"`
}

// HandleStatus checks backend reachability and the stored session.
func HandleStatus(args *ArgParser) error {
	client, cfg, err := Bootstrap(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report := statusReport{
		BaseURL:  cfg.API.BaseURL,
		SignedIn: client.Session().Authenticated(),
	}
	start := time.Now()
	if _, err := client.Categories(ctx); err != nil {
		report.Error = err.Error()
	} else {
		report.Reachable = true
		report.LatencyMs = time.Since(start).Milliseconds()
	}

	if args.BoolFlag("json") {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Println("backend:", report.BaseURL)
	if report.Reachable {
		Success(fmt.Sprintf("reachable (%dms)", report.LatencyMs))
	} else {
		Fail("unreachable: " + report.Error)
	}
	if report.SignedIn {
		Success("credentials stored")
	} else {
		Muted("not signed in")
	}
	return nil
}

// =============================================================================
// POST COMPOSER
// =============================================================================

// HandlePost composes and publishes a post interactively. An aborted
// composition is kept as a draft.
func HandlePost(args *ArgParser) error {
	if !IsTTY() {
		return errors.New("post requires an interactive terminal")
	}
	client, cfg, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if !client.Session().Authenticated() {
		return errors.New("not signed in, run: talk login")
	}

	store, err := OpenStore(cfg)
	if err != nil {
		Muted("drafts unavailable: " + err.Error())
	}
	if store != nil {
		defer store.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	categories, err := client.Categories(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return errors.New("no categories available")
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	// Restore a saved draft, if any
	var draftTitle, draftContent string
	if store != nil {
		if d, err := store.Draft(storage.DraftPost, ""); err == nil {
			draftTitle, draftContent = d.Title, d.Content
			Muted("restored saved draft")
		}
	}

	title, err := line.PromptWithSuggestion("title> ", draftTitle, -1)
	if err != nil {
		return composeAborted(store, draftTitle, draftContent)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("a title is required")
	}

	for i, cat := range categories {
		fmt.Printf("  %d. %s %s\n", i+1, cat.Icon(), cat.Name)
	}
	pick, err := line.Prompt("category [1]> ")
	if err != nil {
		return composeAborted(store, title, draftContent)
	}
	catIndex := 0
	if pick = strings.TrimSpace(pick); pick != "" {
		n, err := strconv.Atoi(pick)
		if err != nil || n < 1 || n > len(categories) {
			return fmt.Errorf("pick a number between 1 and %d", len(categories))
		}
		catIndex = n - 1
	}

	fmt.Println("content (markdown, end with a single '.' line):")
	if draftContent != "" {
		fmt.Println(draftContent)
	}
	var lines []string
	if draftContent != "" {
		lines = append(lines, draftContent)
	}
	for {
		text, err := line.Prompt("| ")
		if err != nil {
			return composeAborted(store, title, strings.Join(lines, "\n"))
		}
		if strings.TrimSpace(text) == "." {
			break
		}
		lines = append(lines, text)
	}
	content := strings.TrimSpace(strings.Join(lines, "\n"))
	if content == "" {
		return errors.New("the post needs some content")
	}

	post, err := client.CreatePost(ctx, model.NewPost{
		Title:    title,
		Content:  content,
		Category: categories[catIndex].ID,
	})
	if err != nil {
		composeAborted(store, title, content)
		return err
	}
	if store != nil {
		store.DeleteDraft(storage.DraftPost, "")
	}
	Success(fmt.Sprintf("published post #%d: %s", post.ID, post.Title))
	return nil
}

// composeAborted saves the half-written post and reports the abort.
func composeAborted(store *storage.Store, title, content string) error {
	if store != nil && (title != "" || content != "") {
		store.SaveDraft(storage.Draft{
			Kind:    storage.DraftPost,
			Title:   title,
			Content: content,
		})
		Muted("draft saved")
	}
	return errors.New("aborted")
}

// =============================================================================
// DRAFTS AND HISTORY
// =============================================================================

// HandleDrafts lists or clears saved drafts.
func HandleDrafts(args *ArgParser) error {
	_, cfg, err := Bootstrap(args)
	if err != nil {
		return err
	}
	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("drafts are disabled in config")
	}
	defer store.Close()

	drafts, err := store.Drafts()
	if err != nil {
		return err
	}

	if args.Subcommand() == "clear" {
		for _, d := range drafts {
			if err := store.DeleteDraft(d.Kind, d.Ref); err != nil {
				return err
			}
		}
		Success(fmt.Sprintf("cleared %d drafts", len(drafts)))
		return nil
	}

	if args.BoolFlag("json") {
		return json.NewEncoder(os.Stdout).Encode(drafts)
	}
	if len(drafts) == 0 {
		Muted("no drafts")
		return nil
	}
	for _, d := range drafts {
		label := d.Kind
		if d.Ref != "" {
			label += " " + d.Ref
		}
		headline := d.Title
		if headline == "" {
			headline = firstWords(d.Content, 8)
		}
		fmt.Printf("%-12s  %s  (%s)\n", label, headline,
			d.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// HandleHistory lists or clears recently viewed posts.
func HandleHistory(args *ArgParser) error {
	_, cfg, err := Bootstrap(args)
	if err != nil {
		return err
	}
	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("local storage is disabled in config")
	}
	defer store.Close()

	if args.Subcommand() == "clear" {
		if err := store.ClearHistory(); err != nil {
			return err
		}
		Success("history cleared")
		return nil
	}

	views, err := store.History(0)
	if err != nil {
		return err
	}
	if args.BoolFlag("json") {
		return json.NewEncoder(os.Stdout).Encode(views)
	}
	if len(views) == 0 {
		Muted("no viewed posts yet")
		return nil
	}
	for _, v := range views {
		fmt.Printf("#%-6d %s  (%s)\n", v.PostID, v.Title,
			v.ViewedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
		return strings.Join(words, " ") + "..."
	}
	return strings.Join(words, " ")
}

// =============================================================================
// CONFIG
// =============================================================================

// HandleConfig shows or changes configuration.
func HandleConfig(args *ArgParser) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args.Subcommand() {
	case "", "show":
		path, _ := config.Path()
		Muted("config: " + path)
		fmt.Println("api.base_url         =", cfg.API.BaseURL)
		fmt.Println("api.timeout_seconds  =", cfg.API.TimeoutSeconds)
		fmt.Println("poll.chat_room_seconds =", cfg.Poll.ChatRoomSeconds)
		fmt.Println("session.idle_timeout_minutes =", cfg.Session.IdleTimeoutMinutes)
		fmt.Println("session.encrypt_credentials  =", cfg.Session.EncryptCredentials)
		fmt.Println("ui.theme             =", cfg.UI.Theme)
		fmt.Println("storage.drafts_enabled =", cfg.Storage.DraftsEnabled)
		return nil

	case "set":
		rest := args.Positional()
		if len(rest) != 3 {
			return errors.New("usage: talk config set <key> <value>")
		}
		key, value := rest[1], rest[2]
		if err := setConfigKey(cfg, key, value); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		Success(key + " = " + value)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q", args.Subcommand())
	}
}

func setConfigKey(cfg *config.Config, key, value string) error {
	atoi := func() (int, error) { return strconv.Atoi(value) }
	switch key {
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.timeout_seconds":
		n, err := atoi()
		if err != nil {
			return err
		}
		cfg.API.TimeoutSeconds = n
	case "poll.chat_room_seconds":
		n, err := atoi()
		if err != nil {
			return err
		}
		cfg.Poll.ChatRoomSeconds = n
	case "session.idle_timeout_minutes":
		n, err := atoi()
		if err != nil {
			return err
		}
		cfg.Session.IdleTimeoutMinutes = n
	case "session.encrypt_credentials":
		cfg.Session.EncryptCredentials = value == "true"
	case "ui.theme":
		cfg.UI.Theme = value
	case "storage.drafts_enabled":
		cfg.Storage.DraftsEnabled = value == "true"
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
