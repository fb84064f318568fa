package crown

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// RegisterEvents adds every crown event type to registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return fmt.Errorf("event registry is required")
	}
	defs := []event.Definition{
		{Type: EventTypeClaimed, ValidatePayload: validateClaimed},
		{Type: EventTypeMoodChanged, ValidatePayload: strictDecode[MoodChangedPayload]},
		{Type: EventTypeRelinquished, ValidatePayload: strictDecode[RelinquishedPayload]},
		{Type: EventTypeFeeChanged, ValidatePayload: strictDecode[FeeChangedPayload]},
		{Type: EventTypeRevoked},
		{Type: EventTypePaused},
		{Type: EventTypeUnpaused},
	}
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// NewEventRegistry returns a registry holding the crown event types.
func NewEventRegistry() (*event.Registry, error) {
	registry := event.NewRegistry()
	if err := RegisterEvents(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

func validateClaimed(raw []byte) error {
	var payload ClaimedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.Holder.IsNull() {
		return fmt.Errorf("holder must be a caller identity")
	}
	return nil
}

func strictDecode[T any](raw []byte) error {
	var payload T
	return json.Unmarshal(raw, &payload)
}
