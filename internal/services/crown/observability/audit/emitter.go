package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/hippycrown/internal/platform/id"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/command"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage"
	"go.opentelemetry.io/otel/trace"
)

// Severity describes the audit severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// EventNameRejected names audit records written for rejected commands.
const EventNameRejected = "crown.rejected"

// Emitter records operational audit events.
type Emitter struct {
	store storage.AuditEventStore
	clock func() time.Time
	newID func() (string, error)
}

// NewEmitter creates a new audit event emitter.
func NewEmitter(store storage.AuditEventStore) *Emitter {
	return &Emitter{store: store, clock: time.Now, newID: id.NewID}
}

// Emit records an audit event, filling in a missing id and timestamp. It is
// a no-op when the emitter or its store is nil.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	if evt.ID == "" {
		newID := e.newID
		if newID == nil {
			newID = id.NewID
		}
		generated, err := newID()
		if err != nil {
			return fmt.Errorf("generate audit id: %w", err)
		}
		evt.ID = generated
	}
	if evt.TraceID == "" {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			evt.TraceID = sc.TraceID().String()
			evt.SpanID = sc.SpanID().String()
		}
	}
	return e.store.AppendAuditEvent(ctx, evt)
}

// RecordRejection writes a crown.rejected record for cmd.
func (e *Emitter) RecordRejection(ctx context.Context, cmd command.Command, rejection command.Rejection) error {
	return e.Emit(ctx, storage.AuditEvent{
		EngineID:    cmd.EngineID,
		EventName:   EventNameRejected,
		Severity:    string(SeverityWarn),
		ActorID:     cmd.ActorID,
		CommandType: string(cmd.Type),
		Code:        rejection.Code,
		Message:     rejection.Message,
	})
}
