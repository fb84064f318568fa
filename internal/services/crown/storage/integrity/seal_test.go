package integrity

import (
	"testing"
	"time"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

func testRing(t *testing.T) *Keyring {
	t.Helper()
	ring, err := NewKeyring(map[string][]byte{"v1": []byte("secret")}, "v1")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	return ring
}

func testEvent(seq uint64) event.Event {
	return event.Event{
		EngineID:    "main",
		Seq:         seq,
		Type:        "crown.claimed",
		Timestamp:   time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		ActorID:     "alice",
		PayloadJSON: []byte(`{"holder":"alice"}`),
	}
}

func TestSealThenVerifyChain(t *testing.T) {
	ring := testRing(t)
	first, err := Seal(ring, testEvent(1), "")
	if err != nil {
		t.Fatalf("seal first: %v", err)
	}
	second, err := Seal(ring, testEvent(2), first.ChainHash)
	if err != nil {
		t.Fatalf("seal second: %v", err)
	}
	if first.Hash == "" || first.ChainHash == "" || first.Signature == "" || first.SignatureKeyID != "v1" {
		t.Fatalf("expected sealed fields, got %+v", first)
	}
	if err := Verify(ring, first, ""); err != nil {
		t.Fatalf("verify first: %v", err)
	}
	if err := Verify(ring, second, first.ChainHash); err != nil {
		t.Fatalf("verify second: %v", err)
	}
}

func TestSealRequiresSeq(t *testing.T) {
	if _, err := Seal(testRing(t), testEvent(0), ""); err == nil {
		t.Fatal("expected error for missing sequence")
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	ring := testRing(t)
	sealed, err := Seal(ring, testEvent(1), "")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	payload := sealed
	payload.PayloadJSON = []byte(`{"holder":"mallory"}`)
	if err := Verify(ring, payload, ""); err == nil {
		t.Fatal("expected payload tampering to fail")
	}

	link := sealed
	if err := Verify(ring, link, "someotherhash"); err == nil {
		t.Fatal("expected broken link to fail")
	}

	signature := sealed
	signature.Signature = "00"
	if err := Verify(ring, signature, ""); err == nil {
		t.Fatal("expected bad signature to fail")
	}

	reordered := sealed
	reordered.Seq = 2
	if err := Verify(ring, reordered, ""); err == nil {
		t.Fatal("expected sequence change to fail")
	}
}
