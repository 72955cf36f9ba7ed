package save

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Digest computes the tamper-evident content hash of a save document.
//
// The document is deep-copied via a JSON round-trip, the nested
// flags.integrity.save_hash value is zeroed in the copy, and the copy is
// serialized in canonical form (sorted keys, no insignificant whitespace)
// before hashing. The caller's document is never mutated.
//
// Hashing must never be the reason a turn fails to persist: when the
// document cannot be canonicalized, Digest falls back to hashing a textual
// rendering instead of returning an error.
func Digest(s *Save) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fallbackDigest(s)
	}

	var clone map[string]any
	if err := json.Unmarshal(b, &clone); err != nil {
		return fallbackDigest(s)
	}
	zeroSaveHash(clone)

	blob, err := json.Marshal(clone)
	if err != nil {
		return fallbackDigest(s)
	}

	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// Stamp recomputes the digest and writes it into the document.
func (s *Save) Stamp() {
	s.Flags.Integrity.SaveHash = Digest(s)
}

// VerifyDigest reports whether the stored hash matches a fresh computation.
// A mismatch means the document was edited outside the engine or is stale.
func (s *Save) VerifyDigest() bool {
	return s.Flags.Integrity.SaveHash == Digest(s)
}

// zeroSaveHash blanks flags.integrity.save_hash in the cloned tree, if present.
func zeroSaveHash(clone map[string]any) {
	flags, ok := clone["flags"].(map[string]any)
	if !ok {
		return
	}
	integrity, ok := flags["integrity"].(map[string]any)
	if !ok {
		return
	}
	if _, ok := integrity["save_hash"]; ok {
		integrity["save_hash"] = ""
	}
}

func fallbackDigest(s *Save) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%+v", s)))
	return hex.EncodeToString(sum[:])
}
