package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrSealCorrupt = errors.New("sealed value is corrupt or keyed differently")

// Sealer encrypts token material before it touches the database, so a copied
// database file alone does not yield usable credentials. The key is derived
// from an application secret bound to the install id, making sealed rows
// non-portable across installs.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the sealing key via HKDF-SHA256 from the secret and the
// install id.
// PRE: secret is non-empty
func NewSealer(secret, installID string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("sealing secret must not be empty")
	}
	kdf := hkdf.New(sha256.New, []byte(secret), []byte(installID), []byte("activitypass/token-seal/v1"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("deriving seal key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("initializing seal cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts a value into a self-contained base64 string with a random
// nonce prefix.
func (s *Sealer) Seal(plain string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	box := s.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal.
// POST: Returns ErrSealCorrupt for truncated, tampered, or foreign-keyed
// input
func (s *Sealer) Open(sealed string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealCorrupt
	}
	if len(box) < chacha20poly1305.NonceSizeX {
		return "", ErrSealCorrupt
	}
	nonce, ciphertext := box[:chacha20poly1305.NonceSizeX], box[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrSealCorrupt
	}
	return string(plain), nil
}
