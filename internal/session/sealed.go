package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealPrefix = "sealed:v1:"
	nonceSize  = 24
)

// ErrUnsealable is returned when a stored value cannot be opened with the
// configured secret.
var ErrUnsealable = errors.New("session value cannot be unsealed")

type sealed struct {
	inner Storage
	key   [32]byte
}

// Sealed encrypts values with NaCl secretbox before they reach inner.
// The key is derived from secret with HKDF-SHA256.
func Sealed(inner Storage, secret string) (Storage, error) {
	if secret == "" {
		return nil, errors.New("seal secret is empty")
	}
	s := &sealed{inner: inner}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("contentdesk session seal"))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}
	return s, nil
}

func (s *sealed) Get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, err := s.open(raw)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

func (s *sealed) Set(ctx context.Context, key, value string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("seal nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return s.inner.Set(ctx, key, sealPrefix+base64.RawURLEncoding.EncodeToString(box))
}

func (s *sealed) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}

func (s *sealed) open(raw string) (string, error) {
	if len(raw) < len(sealPrefix) || raw[:len(sealPrefix)] != sealPrefix {
		return "", ErrUnsealable
	}
	box, err := base64.RawURLEncoding.DecodeString(raw[len(sealPrefix):])
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrUnsealable
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealable
	}
	return string(plain), nil
}
