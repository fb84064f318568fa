package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrTypeRequired indicates a missing event type.
	ErrTypeRequired = errors.New("event type is required")
	// ErrTypeUnknown indicates an event type that was never registered.
	ErrTypeUnknown = errors.New("event type is not registered")
	// ErrTypeAlreadyRegistered indicates a duplicate registration.
	ErrTypeAlreadyRegistered = errors.New("event type already registered")
	// ErrEngineIDRequired indicates a missing engine id.
	ErrEngineIDRequired = errors.New("engine id is required")
	// ErrTimestampRequired indicates a zero timestamp.
	ErrTimestampRequired = errors.New("event timestamp is required")
	// ErrPayloadInvalid indicates a payload that is not a JSON object or fails
	// type-specific validation.
	ErrPayloadInvalid = errors.New("event payload is invalid")
)

// Definition describes one registered event type.
type Definition struct {
	Type Type
	// ValidatePayload checks the decoded payload. Optional.
	ValidatePayload func(payloadJSON []byte) error
}

// Registry holds the event types an engine may append.
type Registry struct {
	mu   sync.RWMutex
	defs map[Type]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Type]Definition)}
}

// Register adds a definition. Registering the same type twice fails.
func (r *Registry) Register(def Definition) error {
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.Type]; ok {
		return fmt.Errorf("%w: %s", ErrTypeAlreadyRegistered, def.Type)
	}
	r.defs[def.Type] = def
	return nil
}

// Definition returns the definition for a type.
func (r *Registry) Definition(typ Type) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[typ]
	return def, ok
}

// ValidateForAppend checks an event before it is journaled and returns it
// with normalized fields. Empty payloads become "{}".
func (r *Registry) ValidateForAppend(evt Event) (Event, error) {
	evt.EngineID = strings.TrimSpace(evt.EngineID)
	if evt.EngineID == "" {
		return Event{}, ErrEngineIDRequired
	}
	if strings.TrimSpace(string(evt.Type)) == "" {
		return Event{}, ErrTypeRequired
	}
	def, ok := r.Definition(evt.Type)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrTypeUnknown, evt.Type)
	}
	if evt.Timestamp.IsZero() {
		return Event{}, ErrTimestampRequired
	}

	payload := bytes.TrimSpace(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	var object map[string]json.RawMessage
	if err := json.Unmarshal(payload, &object); err != nil {
		return Event{}, fmt.Errorf("%w: %s: %v", ErrPayloadInvalid, evt.Type, err)
	}
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(payload); err != nil {
			return Event{}, fmt.Errorf("%w: %s: %v", ErrPayloadInvalid, evt.Type, err)
		}
	}
	evt.PayloadJSON = payload
	return evt, nil
}
