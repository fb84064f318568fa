package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/hippycrown/internal/services/crown/storage"
)

// AppendAuditEvent records an operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(evt.ID) == "" {
		return fmt.Errorf("audit event id is required")
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO audit_events (id, engine_id, timestamp, event_name, severity, actor_id, command_type, code, message, trace_id, span_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.ID,
		evt.EngineID,
		toNanos(evt.Timestamp),
		evt.EventName,
		evt.Severity,
		evt.ActorID,
		evt.CommandType,
		evt.Code,
		evt.Message,
		evt.TraceID,
		evt.SpanID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns up to limit audit events for engineID, oldest first.
func (s *Store) ListAuditEvents(ctx context.Context, engineID string, limit int) ([]storage.AuditEvent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, engine_id, timestamp, event_name, severity, actor_id, command_type, code, message, trace_id, span_id
		 FROM audit_events WHERE engine_id = ? ORDER BY timestamp ASC, id ASC LIMIT ?`,
		strings.TrimSpace(engineID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []storage.AuditEvent
	for rows.Next() {
		var (
			evt       storage.AuditEvent
			timestamp int64
		)
		if err := rows.Scan(
			&evt.ID, &evt.EngineID, &timestamp, &evt.EventName, &evt.Severity,
			&evt.ActorID, &evt.CommandType, &evt.Code, &evt.Message, &evt.TraceID, &evt.SpanID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		evt.Timestamp = fromNanos(timestamp)
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}

var _ storage.Store = (*Store)(nil)
