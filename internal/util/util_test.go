// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello", 10))
	assert.Equal(t, "hel...", TruncateRunes("hello world", 6))
	assert.Equal(t, "he", TruncateRunes("hello", 2))
	assert.Equal(t, "", TruncateRunes("hello", 0))
	// Rune-aware: never splits a multi-byte character
	assert.Equal(t, "日本", TruncateRunes("日本語テキスト", 2))
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "abc", TruncateWidth("abc", 5))
	// CJK characters are two columns wide
	got := TruncateWidth("日本語テキスト", 6)
	assert.LessOrEqual(t, StringWidth(got), 6)
	assert.Equal(t, "", TruncateWidth("abc", 0))
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "ali raza", NormalizeQuery("  Ali   Raza "))
	assert.Equal(t, "café", NormalizeQuery("Café")) // NFD -> NFC
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "title", FirstLine("title\nbody"))
	assert.Equal(t, "oneline", FirstLine("oneline"))
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.json")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0600))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Overwrite is atomic and leaves no temp files behind
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
