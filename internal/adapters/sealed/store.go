// Package sealed encrypts values of any ports.KeyValueStore with AES-256-GCM
// so tokens are not kept in plaintext at rest.
package sealed

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joinify/joinify-go/internal/ports"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// sealedPrefix versions the ciphertext format.
const sealedPrefix = "v1:"

var _ ports.KeyValueStore = (*Store)(nil)

// Store seals values on Set and opens them on Get. The storage key is bound
// as additional data, so a value copied under another key fails to open.
type Store struct {
	inner ports.KeyValueStore
	aead  cipher.AEAD
	rand  io.Reader
}

// ParseKey decodes a base64 (standard or URL alphabet) 32-byte key.
func ParseKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if key, err := enc.DecodeString(raw); err == nil {
			if len(key) != KeySize {
				return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
			}
			return key, nil
		}
	}
	return nil, errors.New("encryption key must be base64 encoded")
}

// New wraps inner with AES-256-GCM sealing under key.
func New(inner ports.KeyValueStore, key []byte) (*Store, error) {
	if inner == nil {
		return nil, errors.New("inner store is required")
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Store{inner: inner, aead: aead, rand: rand.Reader}, nil
}

// Get opens the stored value. Values written before sealing was enabled
// carry no prefix and are returned unchanged; the next Set seals them.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(v, sealedPrefix) {
		return v, nil
	}
	pt, err := s.open(key, strings.TrimPrefix(v, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", key, err)
	}
	return string(pt), nil
}

// Set seals value under a fresh nonce.
func (s *Store) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(key, []byte(value))
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

// Delete passes through to the wrapped store.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *Store) seal(key string, plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	// nonce || ciphertext
	out := s.aead.Seal(nonce, nonce, plaintext, []byte(key))
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

func (s *Store) open(key, encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return nil, errors.New("ciphertext too short")
	}
	return s.aead.Open(nil, data[:n], data[n:], []byte(key))
}
