package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainFact       = "aura/fact/v1"
	DomainTranscript = "aura/transcript/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
// The NUL separator removes domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FactIDFor derives a content-addressed FactID from a payload.
// Equal payloads (after canonicalisation) always yield the same ID, so
// replicas that record the same fact independently deduplicate on merge.
func FactIDFor(payload IRObject) (FactID, error) {
	canonical, err := MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("FactIDFor: failed to marshal: %w", err)
	}
	return FactID(hashWithDomain(DomainFact, canonical)), nil
}

// MustFactIDFor is like FactIDFor but panics on error.
// Use only in tests or when the payload is known to be valid.
func MustFactIDFor(payload IRObject) FactID {
	id, err := FactIDFor(payload)
	if err != nil {
		panic(err)
	}
	return id
}

// TranscriptHash fingerprints a share batch in input order.
// It identifies exactly which shares a signature was combined from.
func TranscriptHash(shares []Share) (string, error) {
	list := make([]any, len(shares))
	for i, s := range shares {
		list[i] = []any{uint64(s.SID), uint64(s.Round), uint64(s.Witness), uint64(s.Data)}
	}
	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("TranscriptHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTranscript, canonical), nil
}
