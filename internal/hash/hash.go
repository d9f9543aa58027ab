// Package hash fingerprints change events for journal record identifiers.
//
// Fingerprints are SHA-256 digests of the event's canonical JSON, so the same
// event always maps to the same fingerprint. A fake implementation lets tests
// choose identifiers.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortLen is the number of hex characters kept by Short.
const ShortLen = 12

// Hasher computes content fingerprints.
type Hasher interface {
	// HashBytes returns the hex-encoded digest of data.
	HashBytes(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashBytes returns the SHA-256 digest of data.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Short truncates a digest to ShortLen characters.
func Short(digest string) string {
	if len(digest) <= ShortLen {
		return digest
	}
	return digest[:ShortLen]
}

// FakeHasher returns a fixed digest for every input.
type FakeHasher struct {
	Digest string
}

// HashBytes returns the configured digest, or "fakehash" if none is set.
func (h *FakeHasher) HashBytes(data []byte) string {
	if h.Digest == "" {
		return "fakehash"
	}
	return h.Digest
}
