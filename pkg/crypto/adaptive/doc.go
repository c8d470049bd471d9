// Package adaptive provides authenticated encryption for sealed map values.
//
// New picks AES-256-GCM on platforms where Go uses hardware AES and
// ChaCha20-Poly1305 elsewhere. Keys are either supplied raw or derived from
// a passphrase and a persisted salt with Argon2id; Subkey splits one master
// key into purpose-bound keys with HKDF-SHA256.
package adaptive
