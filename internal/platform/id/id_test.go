package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func decodeID(t *testing.T, value string) uuid.UUID {
	t.Helper()
	raw, err := encoding.DecodeString(strings.ToUpper(value))
	if err != nil {
		t.Fatalf("decode id %q: %v", value, err)
	}
	parsed, err := uuid.FromBytes(raw)
	if err != nil {
		t.Fatalf("id %q is not a uuid: %v", value, err)
	}
	return parsed
}

func TestNewIDIsLowercaseUnpaddedBase32(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(value), value)
	}
	if strings.TrimFunc(value, func(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= '2' && r <= '7') }) != "" {
		t.Fatalf("unexpected characters in %q", value)
	}
}

func TestNewIDWrapsRandomUUID(t *testing.T) {
	parsed := decodeID(t, mustNewID(t))
	if parsed.Version() != 4 {
		t.Fatalf("expected version 4, got %d", parsed.Version())
	}
	if parsed.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC 4122 variant, got %v", parsed.Variant())
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for range 100 {
		value := mustNewID(t)
		if _, dup := seen[value]; dup {
			t.Fatalf("duplicate id %q", value)
		}
		seen[value] = struct{}{}
	}
}

func mustNewID(t *testing.T) string {
	t.Helper()
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	return value
}
