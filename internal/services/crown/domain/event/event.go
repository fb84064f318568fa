package event

import "time"

// Type identifies the kind of a crown event.
type Type string

// Event is a journaled fact about one engine.
type Event struct {
	// EngineID addresses the engine whose journal holds this event.
	EngineID string
	// Seq is assigned on append and is contiguous per engine, starting at 1.
	Seq uint64
	// Hash is the content hash of the envelope and payload.
	Hash string
	// PrevHash is the ChainHash of the event at Seq-1, empty for the first event.
	PrevHash string
	// ChainHash links Hash to PrevHash.
	ChainHash string
	// Signature is the HMAC of ChainHash under SignatureKeyID.
	Signature      string
	SignatureKeyID string

	Type      Type
	Timestamp time.Time
	// ActorID is the caller identity whose command produced the event.
	ActorID     string
	PayloadJSON []byte
}
