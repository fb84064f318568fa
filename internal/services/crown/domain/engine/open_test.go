package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage"
)

type fakeStore struct {
	fakeJournal
	engines map[string]crown.Genesis
	getErr  error
	// headSkew is added to the reported journal head.
	headSkew uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{engines: make(map[string]crown.Genesis)}
}

func (s *fakeStore) CreateEngine(_ context.Context, genesis crown.Genesis) error {
	if _, ok := s.engines[genesis.EngineID]; ok {
		return storage.ErrAlreadyExists
	}
	s.engines[genesis.EngineID] = genesis
	return nil
}

func (s *fakeStore) GetEngine(_ context.Context, engineID string) (crown.Genesis, error) {
	if s.getErr != nil {
		return crown.Genesis{}, s.getErr
	}
	genesis, ok := s.engines[engineID]
	if !ok {
		return crown.Genesis{}, storage.ErrNotFound
	}
	return genesis, nil
}

func (s *fakeStore) ListEvents(_ context.Context, _ string, afterSeq uint64, limit int) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var page []event.Event
	for _, evt := range s.events {
		if evt.Seq > afterSeq && len(page) < limit {
			page = append(page, evt)
		}
	}
	return page, nil
}

func (s *fakeStore) GetEventBySeq(_ context.Context, _ string, seq uint64) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == 0 || seq > uint64(len(s.events)) {
		return event.Event{}, storage.ErrNotFound
	}
	return s.events[seq-1], nil
}

func (s *fakeStore) GetLatestEventSeq(_ context.Context, _ string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.events)) + s.headSkew, nil
}

func (s *fakeStore) VerifyChain(context.Context, string) error { return nil }

func TestOpenCreatesThenRestores(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	genesis := crown.Genesis{EngineID: "main", Admin: admin, DefaultFee: 10}

	first, err := Open(ctx, store, genesis)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustOK(t)(first.Claim(ctx, alice, 10))
	mustOK(t)(first.ToggleMood(ctx, alice))
	mustOK(t)(first.SetFee(ctx, admin, 25))
	mustOK(t)(first.Pause(ctx, admin))

	// A different admin on reopen is ignored in favour of the stored one.
	second, err := Open(ctx, store, crown.Genesis{EngineID: "main", Admin: bob, DefaultFee: 1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second.State() != first.State() {
		t.Fatalf("expected restored state %+v, got %+v", first.State(), second.State())
	}
	if second.Admin() != admin || second.LastSeq() != 4 || len(second.Events(0)) != 4 {
		t.Fatalf("unexpected restored engine admin=%s seq=%d", second.Admin(), second.LastSeq())
	}

	mustOK(t)(second.Unpause(ctx, admin))
	if got := len(store.events); got != 5 {
		t.Fatalf("expected reopened engine to keep journaling, got %d events", got)
	}
}

func TestOpenValidatesNewGenesis(t *testing.T) {
	if _, err := Open(context.Background(), newFakeStore(), crown.Genesis{EngineID: "main"}); err == nil {
		t.Fatal("expected missing admin to fail")
	}
}

func TestOpenPropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("locked")
	_, err := Open(context.Background(), store, crown.Genesis{EngineID: "main", Admin: admin})
	if !errors.Is(err, store.getErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestOpenRejectsReplayShortOfJournalHead(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	genesis := crown.Genesis{EngineID: "main", Admin: admin, DefaultFee: 10}
	first, err := Open(ctx, store, genesis)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustOK(t)(first.Claim(ctx, alice, 10))

	store.headSkew = 1
	if _, err := Open(ctx, store, genesis); err == nil || !strings.Contains(err.Error(), "journal head is 2") {
		t.Fatalf("expected journal head mismatch, got %v", err)
	}
}
