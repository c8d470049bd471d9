package adaptive

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of derived keys (AES-256 / ChaCha20).
	KeySize = 32

	// SaltSize is the salt length for passphrase derivation.
	SaltSize = 16

	// MinPassphraseLength is the shortest accepted passphrase.
	MinPassphraseLength = 8

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// Key derivation errors.
var (
	ErrPassphraseTooShort = errors.New("adaptive: passphrase too short")
	ErrSaltRequired       = errors.New("adaptive: salt is required for passphrase keys")
	ErrNoKeyMaterial      = errors.New("adaptive: neither key nor passphrase configured")
)

// KeyConfig describes where a cipher key comes from.
//
// Either Key or Passphrase must be set. A passphrase needs the salt that was
// used when the data was first written, otherwise old data cannot be opened.
type KeyConfig struct {
	Key        []byte
	Passphrase []byte
	Salt       []byte
	Algorithm  CipherType
}

// FromConfig builds a cipher from cfg. Purpose, when not empty, derives a
// purpose-bound subkey so one master key can serve several files.
func FromConfig(cfg KeyConfig, purpose string) (Cipher, error) {
	var master []byte
	switch {
	case len(cfg.Passphrase) > 0:
		k, err := DeriveKey(cfg.Passphrase, cfg.Salt)
		if err != nil {
			return nil, err
		}
		master = k
	case len(cfg.Key) > 0:
		master = cfg.Key
	default:
		return nil, ErrNoKeyMaterial
	}

	key := master
	if purpose != "" {
		sub, err := Subkey(master, purpose)
		if err != nil {
			return nil, err
		}
		key = sub
	}

	if cfg.Algorithm == "" {
		return New(key)
	}
	return NewWithType(key, cfg.Algorithm)
}

// DeriveKey derives a KeySize key from passphrase and salt with Argon2id.
func DeriveKey(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooShort
	}
	if len(salt) == 0 {
		return nil, ErrSaltRequired
	}
	return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, KeySize), nil
}

// Subkey derives a KeySize key bound to info from master with HKDF-SHA256.
func Subkey(master []byte, info string) ([]byte, error) {
	if len(master) < 16 {
		return nil, fmt.Errorf("%w: master key must be at least 16 bytes", ErrKeySize)
	}
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("adaptive: derive subkey: %w", err)
	}
	return key, nil
}

// NewSalt returns a random SaltSize salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("adaptive: generate salt: %w", err)
	}
	return salt, nil
}

// Zero overwrites key material in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
