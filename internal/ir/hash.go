package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainConditions = "scoped-search/conditions/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a content-addressed identity for a condition list.
// Two queries that parse to the same ordered conditions share a fingerprint,
// so it can serve as a cache key or HTTP ETag downstream.
func Fingerprint(cs Conditions) (string, error) {
	if cs == nil {
		cs = Conditions{}
	}
	canonical, err := MarshalCanonical(cs)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConditions, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Conditions always marshal, so the panic is unreachable for valid input.
func MustFingerprint(cs Conditions) string {
	fp, err := Fingerprint(cs)
	if err != nil {
		panic(err)
	}
	return fp
}
