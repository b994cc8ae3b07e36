// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/talk-tui/internal/model"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)

	creds := Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}
	require.NoError(t, store.Save(creds))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	// Refresh path: only the access half is replaced
	require.NoError(t, store.SetAccess("acc-2"))
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "acc-2", got.AccessToken)
	assert.Equal(t, "ref-1", got.RefreshToken)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)

	// Clearing an already-empty store is not an error
	require.NoError(t, store.Clear())
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, store.Save(Credentials{AccessToken: "a", RefreshToken: "r"}))

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSetAccessWithoutCredentials(t *testing.T) {
	store := NewFileStore(t.TempDir())
	assert.ErrorIs(t, store.SetAccess("acc"), ErrNoCredentials)
}

func TestEnvelopeSealOpen(t *testing.T) {
	dir := t.TempDir()
	env, err := NewEnvelope(dir)
	require.NoError(t, err)

	sealed, err := env.Seal([]byte(`{"access":"a","refresh":"r"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "refresh")

	opened, err := env.Open(sealed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access":"a","refresh":"r"}`, string(opened))

	// Same machine secret is reloaded, so a second envelope can open it
	env2, err := NewEnvelope(dir)
	require.NoError(t, err)
	opened, err = env2.Open(sealed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access":"a","refresh":"r"}`, string(opened))

	// A different machine secret must fail authentication
	env3, err := NewEnvelope(t.TempDir())
	require.NoError(t, err)
	_, err = env3.Open(sealed)
	assert.ErrorIs(t, err, ErrOpenFailed)
}

func TestEnvelopeRejectsGarbage(t *testing.T) {
	env, err := NewEnvelope(t.TempDir())
	require.NoError(t, err)

	for _, data := range [][]byte{
		nil,
		[]byte("plain"),
		[]byte("ENC:"),
		[]byte("ENC:!!!not-base64!!!"),
		[]byte("ENC:" + "AAAA"),
	} {
		_, err := env.Open(data)
		assert.ErrorIs(t, err, ErrInvalidEnvelope, "data %q", data)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	dir := t.TempDir()
	env, err := NewEnvelope(dir)
	require.NoError(t, err)

	store := NewEncryptedFileStore(dir, env)
	require.NoError(t, store.Save(Credentials{AccessToken: "a", RefreshToken: "r"}))

	// On-disk bytes must not leak the tokens
	raw, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\"a\"")
	assert.Contains(t, string(raw), "ENC:")

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)
}

func TestSession(t *testing.T) {
	store := NewMemoryStore()
	sess := NewSession(store)

	assert.False(t, sess.Authenticated())
	assert.Nil(t, sess.Actor())
	assert.False(t, sess.CanModerate())

	require.NoError(t, store.Save(Credentials{AccessToken: "a", RefreshToken: "r"}))
	assert.True(t, sess.Authenticated())

	sess.SetActor(&model.User{ID: 7, Role: model.RoleModerator})
	assert.True(t, sess.CanModerate())

	require.NoError(t, sess.Reset())
	assert.False(t, sess.Authenticated())
	assert.Nil(t, sess.Actor())
}
