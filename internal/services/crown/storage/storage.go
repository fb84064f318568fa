package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to tell "no such engine yet" apart from storage failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrAlreadyExists indicates an engine id is already taken.
var ErrAlreadyExists = apperrors.New(apperrors.CodeAlreadyExists, "record already exists")

// ErrSequenceConflict indicates an append expected a different journal head.
var ErrSequenceConflict = apperrors.New(apperrors.CodeSequenceConflict, "event sequence conflict")

// EngineStore persists the constructor arguments of each engine.
type EngineStore interface {
	// CreateEngine stores genesis. Returns ErrAlreadyExists for a duplicate id.
	CreateEngine(ctx context.Context, genesis crown.Genesis) error
	// GetEngine returns the stored genesis or ErrNotFound.
	GetEngine(ctx context.Context, engineID string) (crown.Genesis, error)
}

// EventStore owns the append-only journal that drives replay; it is the
// source of truth for state reconstruction.
type EventStore interface {
	// AppendEvent atomically appends an event and returns it with sequence,
	// hashes, and signature set. A non-zero Seq must be the next sequence or
	// the append fails with ErrSequenceConflict.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// GetEventBySeq retrieves a specific event by sequence number.
	GetEventBySeq(ctx context.Context, engineID string, seq uint64) (event.Event, error)
	// ListEvents returns events ordered by sequence ascending.
	ListEvents(ctx context.Context, engineID string, afterSeq uint64, limit int) ([]event.Event, error)
	// GetLatestEventSeq returns the latest sequence number, or 0 when empty.
	GetLatestEventSeq(ctx context.Context, engineID string) (uint64, error)
	// VerifyChain recomputes hashes and signatures for every stored event.
	VerifyChain(ctx context.Context, engineID string) error
}

// AuditEvent captures a rejected or otherwise notable call.
type AuditEvent struct {
	ID          string
	EngineID    string
	Timestamp   time.Time
	EventName   string
	Severity    string
	ActorID     string
	CommandType string
	Code        string
	Message     string
	TraceID     string
	SpanID      string
}

// AuditEventStore persists operational audit records.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
}

// AuditEventLister reads audit records back for operators.
type AuditEventLister interface {
	// ListAuditEvents returns audit records for an engine, oldest first.
	ListAuditEvents(ctx context.Context, engineID string, limit int) ([]AuditEvent, error)
}

// Store is the composite used by the operator command.
type Store interface {
	EngineStore
	EventStore
	AuditEventStore
	AuditEventLister
	Close() error
}
