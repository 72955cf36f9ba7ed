package save

import (
	"strings"
	"testing"
)

func TestDigest_IndependentOfStoredValue(t *testing.T) {
	a := Minimal()
	b := Minimal()
	b.Flags.Integrity.SaveHash = "deadbeef"

	if Digest(a) != Digest(b) {
		t.Error("digest should be independent of its own prior value")
	}
}

func TestDigest_Stable(t *testing.T) {
	s := Minimal()

	first := Digest(s)
	second := Digest(s)

	if first != second {
		t.Errorf("digest not stable: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(first))
	}
	if strings.ToLower(first) != first {
		t.Error("digest should be lowercase hex")
	}
}

func TestDigest_SensitiveToContent(t *testing.T) {
	a := Minimal()
	b := Minimal()
	b.Turn = 7

	if Digest(a) == Digest(b) {
		t.Error("digest should change when content changes")
	}
}

func TestDigest_DoesNotMutateCaller(t *testing.T) {
	s := Minimal()
	s.Flags.Integrity.SaveHash = "original"

	Digest(s)

	if s.Flags.Integrity.SaveHash != "original" {
		t.Error("Digest must not mutate the caller's document")
	}
}

func TestStamp_RoundTripVerifies(t *testing.T) {
	s := Minimal()
	s.Turn = 3
	s.Stamp()

	if !s.VerifyDigest() {
		t.Error("a freshly stamped save should verify")
	}

	s.Turn = 4
	if s.VerifyDigest() {
		t.Error("an edited save should fail verification")
	}
}
