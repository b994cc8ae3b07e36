// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// talk client.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location (in order of precedence):
//   - $TALK_CONFIG
//   - ~/.talkfcit/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/talk-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete talk client configuration.
type Config struct {
	Version string `toml:"version"`

	API     APIConfig     `toml:"api"`
	Poll    PollConfig    `toml:"poll"`
	Session SessionConfig `toml:"session"`
	UI      UIConfig      `toml:"ui"`
	Storage StorageConfig `toml:"storage"`
}

// APIConfig holds the backend endpoint settings.
type APIConfig struct {
	// BaseURL is the REST API root, e.g. "http://localhost:8000/api".
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerSecond limits outbound API calls (0 disables the limiter).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// PollConfig holds the polling cadences for live views.
type PollConfig struct {
	// ChatRoomSeconds is the chat room message poll interval.
	ChatRoomSeconds int `toml:"chat_room_seconds"`

	// NotificationsSeconds is the background notification poll interval.
	NotificationsSeconds int `toml:"notifications_seconds"`

	// ConversationSeconds is the open-conversation refresh interval.
	ConversationSeconds int `toml:"conversation_seconds"`
}

// SessionConfig holds idle-timeout behavior.
type SessionConfig struct {
	// IdleTimeoutMinutes logs the user out after this much inactivity
	// (0 disables the idle timeout).
	IdleTimeoutMinutes int `toml:"idle_timeout_minutes"`

	// EncryptCredentials enables the at-rest envelope around the stored
	// token pair.
	EncryptCredentials bool `toml:"encrypt_credentials"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme"`

	// ShowTimestamps toggles absolute timestamps next to relative ones.
	ShowTimestamps bool `toml:"show_timestamps"`

	// CompactFeed renders one-line post cards in the feed.
	CompactFeed bool `toml:"compact_feed"`
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	// DraftsEnabled persists unfinished post composer content.
	DraftsEnabled bool `toml:"drafts_enabled"`

	// HistoryLimit caps the recently-viewed post history (0 = unlimited).
	HistoryLimit int `toml:"history_limit"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultBaseURL is the development backend address.
const DefaultBaseURL = "http://localhost:8000/api"

// DefaultConfig returns the built-in default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:           DefaultBaseURL,
			TimeoutSeconds:    60,
			RequestsPerSecond: 10,
		},
		Poll: PollConfig{
			ChatRoomSeconds:      5,
			NotificationsSeconds: 30,
			ConversationSeconds:  5,
		},
		Session: SessionConfig{
			IdleTimeoutMinutes: 0,
			EncryptCredentials: false,
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
			CompactFeed:    false,
		},
		Storage: StorageConfig{
			DraftsEnabled: true,
			HistoryLimit:  100,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ProfileDirName is the per-user directory under $HOME.
const ProfileDirName = ".talkfcit"

// ProfileDir returns the profile directory, creating it if needed.
func ProfileDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ProfileDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create profile directory: %w", err)
	}
	return dir, nil
}

// Path returns the config file location, honoring $TALK_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("TALK_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ProfileDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// Load reads the configuration once per process and caches it.
func Load() (*Config, error) {
	loadOnce.Do(func() {
		loaded, loadErr = LoadFrom("")
	})
	return loaded, loadErr
}

// LoadFrom reads configuration from an explicit path, or the default
// location when path is empty. Missing files yield the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run: defaults plus env overrides.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides on top of the
// file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TALK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TALK_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("TALK_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative, got %g", c.API.RequestsPerSecond)
	}
	if c.Poll.ChatRoomSeconds <= 0 {
		return fmt.Errorf("poll.chat_room_seconds must be positive, got %d", c.Poll.ChatRoomSeconds)
	}
	if c.Poll.NotificationsSeconds <= 0 {
		return fmt.Errorf("poll.notifications_seconds must be positive, got %d", c.Poll.NotificationsSeconds)
	}
	if c.Poll.ConversationSeconds <= 0 {
		return fmt.Errorf("poll.conversation_seconds must be positive, got %d", c.Poll.ConversationSeconds)
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// RequestTimeout returns the HTTP timeout as a duration.
func (c *APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChatRoomInterval returns the chat room poll interval.
func (c *PollConfig) ChatRoomInterval() time.Duration {
	return time.Duration(c.ChatRoomSeconds) * time.Second
}

// NotificationsInterval returns the notification poll interval.
func (c *PollConfig) NotificationsInterval() time.Duration {
	return time.Duration(c.NotificationsSeconds) * time.Second
}

// ConversationInterval returns the conversation refresh interval.
func (c *PollConfig) ConversationInterval() time.Duration {
	return time.Duration(c.ConversationSeconds) * time.Second
}

// IdleTimeout returns the session idle timeout (0 when disabled).
func (c *SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration atomically to the default location.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration atomically to an explicit path.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}
