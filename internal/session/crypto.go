package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrCipherTooShort is returned when an encrypted blob is shorter than
// the AEAD nonce.
var ErrCipherTooShort = errors.New("ciphertext shorter than nonce")

// NewAEAD derives an AES-GCM AEAD from the configured store secret using
// HKDF-SHA256. The namespace salts the derivation so distinct stores
// sharing one secret still get distinct keys.
func NewAEAD(secret, namespace string) (cipher.AEAD, error) {
	if secret == "" {
		return nil, errors.New("empty store secret")
	}
	hk := hkdf.New(sha256.New, []byte(secret), []byte(namespace), []byte("frontgate session store v1"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}

// seal encrypts plaintext with a fresh random nonce, returning
// nonce||ciphertext.
func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts a nonce||ciphertext blob produced by seal.
func open(aead cipher.AEAD, blob []byte) ([]byte, error) {
	if len(blob) < aead.NonceSize() {
		return nil, ErrCipherTooShort
	}
	nonce, data := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	return aead.Open(nil, nonce, data, nil)
}
