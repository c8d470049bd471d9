package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/yndnr/journalmap/internal/storage/wal"
	"github.com/yndnr/journalmap/internal/telemetry/logger"
	"github.com/yndnr/journalmap/pkg/crypto/adaptive"
)

// Accepted enumerations.
var (
	ValueCodecs   = []string{"string", "json", "proto"}
	OutputFormats = []string{"table", "json", "yaml"}
	LogFormats    = []string{"json", "text", "console"}
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *Config) error {
	return errors.Join(
		verifyMap(&cfg.Map),
		verifyPolicy(&cfg.Policy),
		verifyCodec(&cfg.Codec),
		verifyEncryption(&cfg.Encryption),
		verifyLog(&cfg.Log),
		verifyOneOf("output", cfg.Output, OutputFormats),
	)
}

func verifyMap(cfg *MapSection) error {
	if cfg.Snapshot == "" {
		return errors.New("map.snapshot is required")
	}
	if cfg.Journal == "" {
		return errors.New("map.journal is required")
	}
	if filepath.Clean(cfg.Snapshot) == filepath.Clean(cfg.Journal) {
		return errors.New("map.snapshot and map.journal must differ")
	}
	return nil
}

func verifyPolicy(cfg *PolicySection) error {
	if _, ok := wal.ParseTailPolicy(cfg.TailPolicy); !ok {
		return fmt.Errorf("policy.tail_policy %q must be truncate or strict", cfg.TailPolicy)
	}
	if cfg.AutoCompactBytes < 0 {
		return errors.New("policy.auto_compact_bytes must not be negative")
	}
	return nil
}

func verifyCodec(cfg *CodecSection) error {
	return verifyOneOf("codec.value", cfg.Value, ValueCodecs)
}

func verifyEncryption(cfg *EncryptionSection) error {
	if !cfg.Enabled {
		return nil
	}
	if len(cfg.Passphrase) < adaptive.MinPassphraseLength {
		return fmt.Errorf("encryption.passphrase must be at least %d characters", adaptive.MinPassphraseLength)
	}
	salt, err := hex.DecodeString(cfg.Salt)
	if err != nil || len(salt) < adaptive.SaltSize {
		return fmt.Errorf("encryption.salt must be at least %d hex-encoded bytes", adaptive.SaltSize)
	}
	switch adaptive.CipherType(cfg.Algorithm) {
	case "", adaptive.CipherAESGCM, adaptive.CipherChaCha20:
		return nil
	default:
		return fmt.Errorf("encryption.algorithm %q is not supported", cfg.Algorithm)
	}
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Format == "" {
		return nil
	}
	return verifyOneOf("log.format", cfg.Format, LogFormats)
}

func verifyOneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s %q must be one of %v", key, value, allowed)
}
