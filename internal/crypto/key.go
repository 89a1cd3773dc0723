package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"runtime"

	"golang.org/x/crypto/scrypt"
)

const SaltBytes = 16

// ScryptParams are the cost parameters persisted with a derived key.
type ScryptParams struct {
	N int `json:"scrypt_N"`
	R int `json:"scrypt_r"`
	P int `json:"scrypt_p"`
}

// DefaultScryptParams are the tunables for interactive unlocks.
func DefaultScryptParams() ScryptParams { return ScryptParams{N: 1 << 15, R: 8, P: 1} }

// NewKey returns KeyBytes of randomness.
func NewKey() ([]byte, error) {
	k := make([]byte, KeyBytes)
	if _, err := rand.Read(k); err != nil {
		return nil, err
	}
	return k, nil
}

// NewSalt returns SaltBytes of randomness.
func NewSalt() ([]byte, error) {
	s := make([]byte, SaltBytes)
	if _, err := rand.Read(s); err != nil {
		return nil, err
	}
	return s, nil
}

// DeriveKey stretches passphrase into a KeyBytes key.
func DeriveKey(passphrase string, salt []byte, p ScryptParams) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, p.N, p.R, p.P, KeyBytes)
}

// Fingerprint returns a short hex fingerprint of key material.
//
// It hashes with SHA-256 and truncates to 8 bytes (16 hex chars).
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

// Wipe zeroes the provided buffer. This is best-effort and aims to
// reduce the chance of the compiler eliding the write.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// Ensure b is considered live until after the loop.
	runtime.KeepAlive(&b)
}
