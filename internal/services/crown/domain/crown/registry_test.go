package crown

import (
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

func TestNewEventRegistryRegistersAllTypes(t *testing.T) {
	registry, err := NewEventRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	for _, typ := range []event.Type{
		EventTypeClaimed, EventTypeMoodChanged, EventTypeRelinquished,
		EventTypeFeeChanged, EventTypeRevoked, EventTypePaused, EventTypeUnpaused,
	} {
		if _, ok := registry.Definition(typ); !ok {
			t.Fatalf("expected %s to be registered", typ)
		}
	}
	if err := RegisterEvents(registry); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestClaimedPayloadRejectsVacantHolder(t *testing.T) {
	registry, err := NewEventRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	_, err = registry.ValidateForAppend(event.Event{
		EngineID:    testEngineID,
		Type:        EventTypeClaimed,
		Timestamp:   time.Unix(1, 0),
		PayloadJSON: []byte(`{"holder":"0x0000000000000000000000000000000000000000"}`),
	})
	if !errors.Is(err, event.ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid, got %v", err)
	}
}
