// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the Talk@FCIT session credential pair.
//
// The pair (access token, refresh token) is created at login, the access
// half is replaced on every successful refresh, and both halves are
// destroyed on logout or irrecoverable refresh failure. Persistence is a
// JSON file under the profile directory, optionally wrapped in an
// AES-256-GCM envelope keyed through PBKDF2 from a machine-local secret.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/talk-tui/internal/util"
)

// =============================================================================
// CREDENTIALS
// =============================================================================

// Credentials is the session credential pair issued by /auth/login/.
type Credentials struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Empty reports whether no credentials are stored.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// ErrNoCredentials indicates no stored credential pair.
var ErrNoCredentials = errors.New("no stored credentials")

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the durable credential store. Implementations must be safe
// for concurrent use: refresh and login both write while requests read.
type Store interface {
	// Load returns the stored pair, or ErrNoCredentials.
	Load() (Credentials, error)

	// Save replaces the stored pair.
	Save(Credentials) error

	// SetAccess replaces only the access token, keeping the refresh token.
	SetAccess(access string) error

	// Clear destroys both tokens.
	Clear() error
}

// =============================================================================
// FILE STORE
// =============================================================================

// credentialsFile is the fixed store filename under the profile dir.
const credentialsFile = "credentials.json"

// FileStore persists the credential pair as a 0600 JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string

	// envelope is non-nil when at-rest encryption is enabled.
	envelope *Envelope
}

// NewFileStore creates a store rooted at dir (normally the profile dir).
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, credentialsFile)}
}

// NewEncryptedFileStore creates a store whose file content is wrapped in
// the AES-GCM envelope.
func NewEncryptedFileStore(dir string, env *Envelope) *FileStore {
	return &FileStore{
		path:     filepath.Join(dir, credentialsFile),
		envelope: env,
	}
}

// Load implements Store.
func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	if s.envelope != nil {
		data, err = s.envelope.Open(data)
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to open credential envelope: %w", err)
		}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.Empty() {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

// Save implements Store.
func (s *FileStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(creds)
}

func (s *FileStore) saveLocked(creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if s.envelope != nil {
		data, err = s.envelope.Seal(data)
		if err != nil {
			return fmt.Errorf("failed to seal credential envelope: %w", err)
		}
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}

// SetAccess implements Store. The last successful refresh wins when
// concurrent refreshes race; the mutex serializes the read-modify-write.
func (s *FileStore) SetAccess(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.loadLocked()
	if err != nil {
		return err
	}
	creds.AccessToken = access
	return s.saveLocked(creds)
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore is an in-process Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
	set   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set || s.creds.Empty() {
		return Credentials{}, ErrNoCredentials
	}
	return s.creds, nil
}

// Save implements Store.
func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
	return nil
}

// SetAccess implements Store.
func (s *MemoryStore) SetAccess(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return ErrNoCredentials
	}
	s.creds.AccessToken = access
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.set = false
	return nil
}
