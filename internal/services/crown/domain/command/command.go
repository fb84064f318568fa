package command

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// Type identifies a command.
type Type string

// Command is a request to change engine state on behalf of ActorID.
type Command struct {
	EngineID    string
	Type        Type
	ActorID     string
	PayloadJSON []byte
}

// New builds a command with a JSON-encoded payload. A nil payload encodes as
// "{}". The actor id is kept verbatim.
func New(engineID string, typ Type, actorID string, payload any) (Command, error) {
	cmd := Command{
		EngineID: strings.TrimSpace(engineID),
		Type:     typ,
		ActorID:  actorID,
	}
	if payload == nil {
		cmd.PayloadJSON = []byte("{}")
		return cmd, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Command{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	cmd.PayloadJSON = encoded
	return cmd, nil
}

// NewEvent builds an event that copies the envelope fields of cmd.
func NewEvent(cmd Command, eventType event.Type, payload any, now time.Time) (event.Event, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return event.Event{
		EngineID:    cmd.EngineID,
		Type:        eventType,
		Timestamp:   now.UTC(),
		ActorID:     cmd.ActorID,
		PayloadJSON: encoded,
	}, nil
}
