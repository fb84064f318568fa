package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/replay"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage"
)

// Store is the persistence an engine needs to be opened from its journal.
type Store interface {
	storage.EngineStore
	storage.EventStore
}

// Open loads the engine named by genesis.EngineID from store, creating it
// from genesis when it does not exist yet. A stored engine keeps its stored
// admin, sentinel, and default fee; the journal is replayed on top of them
// and becomes the engine's journal.
func Open(ctx context.Context, store Store, genesis crown.Genesis, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if genesis.Sentinel == "" {
		genesis.Sentinel = crown.SentinelFor(genesis.EngineID)
	}

	stored, err := store.GetEngine(ctx, genesis.EngineID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if err := genesis.Validate(); err != nil {
			return nil, fmt.Errorf("invalid genesis: %w", err)
		}
		if err := store.CreateEngine(ctx, genesis); err != nil {
			return nil, fmt.Errorf("create engine: %w", err)
		}
		stored = genesis
	case err != nil:
		return nil, fmt.Errorf("get engine: %w", err)
	}

	var events []event.Event
	collect := replay.ApplierFunc(func(state any, evt event.Event) (any, error) {
		events = append(events, evt)
		return crown.Applier{}.Apply(state, evt)
	})
	result, err := replay.Replay(ctx, store, collect, stored.EngineID, crown.NewState(stored), replay.Options{})
	if err != nil {
		return nil, fmt.Errorf("replay engine %s: %w", stored.EngineID, err)
	}
	state, ok := result.State.(crown.State)
	if !ok {
		return nil, fmt.Errorf("replay returned %T", result.State)
	}
	head, err := store.GetLatestEventSeq(ctx, stored.EngineID)
	if err != nil {
		return nil, fmt.Errorf("journal head %s: %w", stored.EngineID, err)
	}
	if head != result.LastSeq {
		return nil, fmt.Errorf("replay engine %s stopped at seq %d, journal head is %d", stored.EngineID, result.LastSeq, head)
	}

	opts = append([]Option{WithJournal(store)}, opts...)
	opts = append(opts, withRestored(state, events))
	return New(stored, opts...)
}
