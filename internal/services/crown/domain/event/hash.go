package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// hashEnvelope fixes the field order of the content hash input.
type hashEnvelope struct {
	EngineID  string          `json:"engine_id"`
	Type      Type            `json:"type"`
	Timestamp string          `json:"timestamp"`
	ActorID   string          `json:"actor_id"`
	Payload   json.RawMessage `json:"payload"`
}

type chainEnvelope struct {
	Seq       uint64 `json:"seq"`
	EventHash string `json:"event_hash"`
	PrevHash  string `json:"prev_hash"`
}

// EventHash computes the SHA-256 content hash of an event.
//
// Sequence and integrity fields are excluded, so the same fact hashes the same
// before and after it is journaled.
func EventHash(evt Event) (string, error) {
	payload, err := canonicalPayload(evt.PayloadJSON)
	if err != nil {
		return "", err
	}
	return sha256JSON(hashEnvelope{
		EngineID:  evt.EngineID,
		Type:      evt.Type,
		Timestamp: evt.Timestamp.UTC().Format(time.RFC3339Nano),
		ActorID:   evt.ActorID,
		Payload:   payload,
	})
}

// ChainHash computes the hash linking an event to its predecessor.
func ChainHash(evt Event, prevHash string) (string, error) {
	hash := evt.Hash
	if hash == "" {
		computed, err := EventHash(evt)
		if err != nil {
			return "", err
		}
		hash = computed
	}
	return sha256JSON(chainEnvelope{
		Seq:       evt.Seq,
		EventHash: hash,
		PrevHash:  prevHash,
	})
}

// canonicalPayload re-encodes JSON so key order and whitespace do not affect
// the hash. Numbers keep their literal form.
func canonicalPayload(raw []byte) (json.RawMessage, error) {
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return encoded, nil
}

func sha256JSON(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode hash input: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
