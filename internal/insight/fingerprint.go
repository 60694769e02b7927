package insight

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSnapshot is the domain-separation prefix for snapshot
// fingerprints. The version suffix enables future algorithm migration.
const DomainSnapshot = "vitale/snapshot/v1"

// Fingerprint computes the content-addressed identity of a snapshot:
// SHA-256 over the canonical JSON of its field set, domain-separated by
// entity kind.
//
// Two structurally equal snapshots of the same kind always produce the
// same fingerprint, and the determinism invariant of Analyze makes the
// fingerprint a safe memoization and deduplication key.
//
// Returns an error if the canonical map contains a value that cannot be
// canonically marshaled (a float, a nil) - which, like any other shape
// violation, is a programming error in the snapshot type.
func Fingerprint(kind string, snapshot Snapshot) (string, error) {
	obj := map[string]any{
		"kind":     kind,
		"snapshot": snapshot.CanonicalMap(),
	}

	canonical, err := marshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s snapshot: %w", kind, err)
	}

	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(kind string, snapshot Snapshot) string {
	fp, err := Fingerprint(kind, snapshot)
	if err != nil {
		panic(err)
	}
	return fp
}

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
