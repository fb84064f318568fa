package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage/integrity"
)

func testKeyring(t *testing.T) *integrity.Keyring {
	t.Helper()
	keyring, err := integrity.NewKeyring(
		map[string][]byte{"test-key-1": []byte("0123456789abcdef0123456789abcdef")},
		"test-key-1",
	)
	if err != nil {
		t.Fatalf("create test keyring: %v", err)
	}
	return keyring
}

func openTestEventsStore(t *testing.T) *Store {
	t.Helper()
	return openTestEventsStoreAt(t, filepath.Join(t.TempDir(), "events.sqlite"))
}

func openTestEventsStoreAt(t *testing.T, path string) *Store {
	t.Helper()
	registry, err := crown.NewEventRegistry()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	store, err := OpenEvents(context.Background(), path, testKeyring(t), registry)
	if err != nil {
		t.Fatalf("open events store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close events store: %v", err)
		}
	})
	return store
}

func testGenesis(engineID string) crown.Genesis {
	return crown.Genesis{
		EngineID:   engineID,
		Admin:      "admin",
		Sentinel:   crown.SentinelFor(engineID),
		DefaultFee: 10,
		CreatedAt:  time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}
}

func createTestEngine(t *testing.T, store *Store, engineID string) {
	t.Helper()
	if err := store.CreateEngine(context.Background(), testGenesis(engineID)); err != nil {
		t.Fatalf("create engine: %v", err)
	}
}

func claimedEvent(engineID, holder string, at time.Time) event.Event {
	return event.Event{
		EngineID:    engineID,
		Type:        crown.EventTypeClaimed,
		Timestamp:   at,
		ActorID:     holder,
		PayloadJSON: []byte(`{"holder":"` + holder + `"}`),
	}
}
