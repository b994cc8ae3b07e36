// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/talk-tui/internal/util"
)

// =============================================================================
// AT-REST ENVELOPE
// =============================================================================

// Envelope format: "ENC:" + base64(salt | nonce | ciphertext). The AES-256
// key is derived with PBKDF2-SHA-256 from a random machine-local secret
// kept next to the credentials file. This protects the token pair against
// casual file disclosure (backups, copied home dirs), not against an
// attacker with code execution as the user.

const (
	envelopePrefix = "ENC:"
	saltSize       = 32
	nonceSize      = 12
	keySize        = 32
	secretSize     = 64

	// pbkdf2Iterations follows the OWASP 2023 recommendation for
	// PBKDF2-SHA-256.
	pbkdf2Iterations = 600000
)

var (
	// ErrInvalidEnvelope indicates the sealed data is malformed.
	ErrInvalidEnvelope = errors.New("invalid credential envelope")

	// ErrOpenFailed indicates authentication failed on decrypt (wrong key
	// or tampered data).
	ErrOpenFailed = errors.New("credential envelope authentication failed")
)

// Envelope seals and opens small secrets with AES-256-GCM.
type Envelope struct {
	secret []byte
}

// machineSecretFile holds the random secret the key is derived from.
const machineSecretFile = "machine.key"

// NewEnvelope loads (or on first use creates) the machine-local secret in
// dir and returns an envelope bound to it.
func NewEnvelope(dir string) (*Envelope, error) {
	path := filepath.Join(dir, machineSecretFile)

	secret, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		secret = make([]byte, secretSize)
		if _, err := io.ReadFull(rand.Reader, secret); err != nil {
			return nil, fmt.Errorf("failed to generate machine secret: %w", err)
		}
		if err := util.AtomicWriteFile(path, secret, 0600); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read machine secret: %w", err)
	}

	return &Envelope{secret: secret}, nil
}

// Seal encrypts plaintext into the envelope format.
func (e *Envelope) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := e.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)

	raw := make([]byte, 0, saltSize+nonceSize+len(sealed))
	raw = append(raw, salt...)
	raw = append(raw, nonce...)
	raw = append(raw, sealed...)

	return []byte(envelopePrefix + base64.StdEncoding.EncodeToString(raw)), nil
}

// Open decrypts data produced by Seal.
func (e *Envelope) Open(data []byte) ([]byte, error) {
	s := string(data)
	if len(s) <= len(envelopePrefix) || s[:len(envelopePrefix)] != envelopePrefix {
		return nil, ErrInvalidEnvelope
	}

	raw, err := base64.StdEncoding.DecodeString(s[len(envelopePrefix):])
	if err != nil {
		return nil, ErrInvalidEnvelope
	}
	if len(raw) < saltSize+nonceSize {
		return nil, ErrInvalidEnvelope
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	sealed := raw[saltSize+nonceSize:]

	aead, err := e.aead(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

// aead derives the AES-256-GCM cipher for a given salt.
func (e *Envelope) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.secret, salt, pbkdf2Iterations, keySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// zeroBytes zeros key material after use.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
