package kvstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// MinSecretLen is the minimum acceptable length for the sealing secret.
// 32 bytes = 256 bits of entropy.
const MinSecretLen = 32

// ErrSecretTooShort is returned when a secret does not meet MinSecretLen.
var ErrSecretTooShort = fmt.Errorf("kvstore: secret must be at least %d bytes", MinSecretLen)

// ErrSealedCorrupt is returned when a stored value fails to open, which
// means it was written with a different secret or tampered with.
var ErrSealedCorrupt = errors.New("kvstore: sealed value failed to open")

// Sealed wraps a Store and encrypts every value with NaCl secretbox
// before it reaches the inner store. Keys stay in cleartext; values are
// nonce-prefixed ciphertext. The secretbox key is derived from the
// secret via SHA-256.
type Sealed struct {
	inner Store
	key   [32]byte
}

// NewSealed creates an encrypting wrapper around inner.
func NewSealed(inner Store, secret []byte) (*Sealed, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	return &Sealed{inner: inner, key: sha256.Sum256(secret)}, nil
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < 24 {
		return nil, ErrSealedCorrupt
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &s.key)
	if !ok {
		return nil, ErrSealedCorrupt
	}
	return plain, nil
}

func (s *Sealed) Set(ctx context.Context, key string, value []byte) error {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("kvstore: nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], value, &nonce, &s.key)
	return s.inner.Set(ctx, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
