package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage/integrity"
)

const eventColumns = `engine_id, seq, event_hash, prev_event_hash, chain_hash, signature_key_id, event_signature, timestamp, event_type, actor_id, payload_json`

// verifyPageSize bounds how many events VerifyChain holds at once.
const verifyPageSize = 500

// AppendEvent atomically appends an event and returns it with sequence,
// hashes, and signature set. A non-zero evt.Seq is the sequence the caller
// expects; it is checked against the journal head inside the transaction.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := s.ready(ctx); err != nil {
		return event.Event{}, err
	}
	validated, err := s.eventRegistry.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}
	evt = validated
	evt.Timestamp = evt.Timestamp.UTC()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		lastSeq  int64
		prevHash string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT seq, chain_hash FROM events WHERE engine_id = ? ORDER BY seq DESC LIMIT 1`,
		evt.EngineID,
	).Scan(&lastSeq, &prevHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, fmt.Errorf("load previous event: %w", err)
	}
	next := uint64(lastSeq) + 1
	if evt.Seq != 0 && evt.Seq != next {
		return event.Event{}, apperrors.WrapWithMetadata(apperrors.CodeSequenceConflict,
			fmt.Sprintf("append event: expected seq %d, journal is at %d", evt.Seq, lastSeq),
			map[string]string{"EngineID": evt.EngineID, "Expected": strconv.FormatUint(evt.Seq, 10)},
			storage.ErrSequenceConflict)
	}
	evt.Seq = next

	sealed, err := integrity.Seal(s.keyring, evt, prevHash)
	if err != nil {
		return event.Event{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sealed.EngineID,
		int64(sealed.Seq),
		sealed.Hash,
		sealed.PrevHash,
		sealed.ChainHash,
		sealed.SignatureKeyID,
		sealed.Signature,
		toNanos(sealed.Timestamp),
		string(sealed.Type),
		sealed.ActorID,
		sealed.PayloadJSON,
	)
	if err != nil {
		if isConstraintError(err) {
			return event.Event{}, apperrors.Wrap(apperrors.CodeSequenceConflict,
				fmt.Sprintf("append event %d: sequence taken", sealed.Seq), err)
		}
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit: %w", err)
	}
	return sealed, nil
}

// GetEventBySeq retrieves a specific event by sequence number.
func (s *Store) GetEventBySeq(ctx context.Context, engineID string, seq uint64) (event.Event, error) {
	if err := s.ready(ctx); err != nil {
		return event.Event{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE engine_id = ? AND seq = ?`,
		strings.TrimSpace(engineID), int64(seq),
	)
	evt, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, storage.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("get event by seq: %w", err)
	}
	return evt, nil
}

// ListEvents returns up to limit events after afterSeq, ordered by sequence.
func (s *Store) ListEvents(ctx context.Context, engineID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE engine_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?`,
		strings.TrimSpace(engineID), int64(afterSeq), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0, limit)
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetLatestEventSeq returns the latest sequence number, or 0 when empty.
func (s *Store) GetLatestEventSeq(ctx context.Context, engineID string) (uint64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var seq int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE engine_id = ?`,
		strings.TrimSpace(engineID),
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get latest event seq: %w", err)
	}
	return uint64(seq), nil
}

// VerifyChain walks the journal in order, checking sequence continuity,
// hashes, links, and signatures.
func (s *Store) VerifyChain(ctx context.Context, engineID string) error {
	var (
		afterSeq uint64
		prevHash string
	)
	for {
		events, err := s.ListEvents(ctx, engineID, afterSeq, verifyPageSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		for _, evt := range events {
			if evt.Seq != afterSeq+1 {
				return fmt.Errorf("event sequence gap: expected %d got %d", afterSeq+1, evt.Seq)
			}
			if err := integrity.Verify(s.keyring, evt, prevHash); err != nil {
				return err
			}
			afterSeq = evt.Seq
			prevHash = evt.ChainHash
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		evt       event.Event
		seq       int64
		timestamp int64
		eventType string
	)
	if err := row.Scan(
		&evt.EngineID,
		&seq,
		&evt.Hash,
		&evt.PrevHash,
		&evt.ChainHash,
		&evt.SignatureKeyID,
		&evt.Signature,
		&timestamp,
		&eventType,
		&evt.ActorID,
		&evt.PayloadJSON,
	); err != nil {
		return event.Event{}, err
	}
	evt.Seq = uint64(seq)
	evt.Timestamp = fromNanos(timestamp)
	evt.Type = event.Type(eventType)
	return evt, nil
}
