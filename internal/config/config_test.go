// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Poll.ChatRoomInterval())
	assert.Equal(t, 30*time.Second, cfg.Poll.NotificationsInterval())
	assert.Equal(t, 60*time.Second, cfg.API.RequestTimeout())
	assert.Equal(t, time.Duration(0), cfg.Session.IdleTimeout())
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1"

[api]
base_url = "https://talk.pucit.edu.pk/api"
timeout_seconds = 30
requests_per_second = 5.0

[poll]
chat_room_seconds = 3
notifications_seconds = 60
conversation_seconds = 4

[ui]
theme = "light"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://talk.pucit.edu.pk/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Poll.ChatRoomInterval())
	assert.Equal(t, "light", cfg.UI.Theme)
	// Sections absent from the file keep their defaults
	assert.True(t, cfg.Storage.DraftsEnabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TALK_API_URL", "http://10.0.0.5:8000/api")
	t.Setenv("TALK_API_TIMEOUT", "15")
	t.Setenv("TALK_THEME", "light")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.TimeoutSeconds)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "not a url" }},
		{"zero timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }},
		{"zero chat poll", func(c *Config) { c.Poll.ChatRoomSeconds = 0 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://example.edu/api"
	cfg.UI.CompactFeed = true
	require.NoError(t, cfg.SaveTo(path))

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.edu/api", reloaded.API.BaseURL)
	assert.True(t, reloaded.UI.CompactFeed)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, DefaultConfig().SaveTo(path))

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	cfg := DefaultConfig()
	cfg.UI.Theme = "light"
	require.NoError(t, cfg.SaveTo(path))

	select {
	case got := <-changed:
		assert.Equal(t, "light", got.UI.Theme)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not deliver reloaded config")
	}
}
