// Package replay rebuilds aggregate state by folding journal pages in order.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/hippycrown/internal/platform/pagination"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

var pageSizes = pagination.PageSizeConfig{Default: 200, Max: 1000}

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrApplierRequired indicates a missing applier.
	ErrApplierRequired = errors.New("applier is required")
	// ErrEngineIDRequired indicates a missing engine id.
	ErrEngineIDRequired = errors.New("engine id is required")
	// ErrSequenceGap indicates a journal page that skipped a sequence number.
	ErrSequenceGap = errors.New("event sequence gap")
)

// EventStore lists events for replay.
type EventStore interface {
	ListEvents(ctx context.Context, engineID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// Applier applies a domain event to state.
type Applier interface {
	Apply(state any, evt event.Event) (any, error)
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(state any, evt event.Event) (any, error)

// Apply calls f.
func (f ApplierFunc) Apply(state any, evt event.Event) (any, error) {
	return f(state, evt)
}

// Options configures replay behavior.
type Options struct {
	AfterSeq uint64
	UntilSeq uint64
	PageSize int
}

// Result captures replay outcomes.
type Result struct {
	State   any
	LastSeq uint64
	Applied int
}

// Replay folds events after options.AfterSeq into state, in sequence order.
// A non-zero UntilSeq stops replay once it is reached.
func Replay(ctx context.Context, store EventStore, applier Applier, engineID string, state any, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrEventStoreRequired
	}
	if applier == nil {
		return Result{}, ErrApplierRequired
	}
	engineID = strings.TrimSpace(engineID)
	if engineID == "" {
		return Result{}, ErrEngineIDRequired
	}

	pageSize := pagination.ClampPageSize(options.PageSize, pageSizes)

	result := Result{State: state, LastSeq: options.AfterSeq}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		events, err := store.ListEvents(ctx, engineID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("%w: expected %d got %d", ErrSequenceGap, expectedSeq, evt.Seq)
			}
			nextState, err := applier.Apply(result.State, evt)
			if err != nil {
				return result, fmt.Errorf("apply event %d: %w", evt.Seq, err)
			}
			result.State = nextState
			result.LastSeq = evt.Seq
			result.Applied++
		}
	}
}
