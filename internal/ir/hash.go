package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for content-addressed IR identity.
// Version suffix enables future algorithm migration.
const DomainIR = "stride/ir/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of an IR document over its
// canonical JSON form. Identical (journey, store snapshot) inputs compile
// to identical IR and therefore identical hashes; the report ledger keys
// runs on this.
func Hash(d *IR) (string, error) {
	canonical, err := MarshalCanonical(d.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("ir hash: %w", err)
	}
	return hashWithDomain(DomainIR, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when the IR is known to be valid.
func MustHash(d *IR) string {
	h, err := Hash(d)
	if err != nil {
		panic(err)
	}
	return h
}
