package engine

import (
	"log"
	"sync"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// Handler receives committed events.
type Handler func(evt event.Event)

type subscriber struct {
	id      uint64
	handler Handler
	types   map[event.Type]struct{}
}

func (s subscriber) wants(typ event.Type) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[typ]
	return ok
}

// subscriptions queues committed events and delivers them outside the engine
// mutex. Only one goroutine drains at a time so delivery follows sequence
// order; handlers may call back into the engine.
type subscriptions struct {
	mu       sync.Mutex
	nextID   uint64
	subs     []subscriber
	pending  []event.Event
	draining bool
}

func (s *subscriptions) add(handler Handler, types []event.Type) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sub := subscriber{id: s.nextID, handler: handler}
	if len(types) > 0 {
		sub.types = make(map[event.Type]struct{}, len(types))
		for _, typ := range types {
			sub.types[typ] = struct{}{}
		}
	}
	s.subs = append(s.subs, sub)
	return sub.id
}

func (s *subscriptions) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *subscriptions) enqueue(evt event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	s.pending = append(s.pending, evt)
}

func (s *subscriptions) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	defer func() {
		s.draining = false
		s.mu.Unlock()
	}()
	for len(s.pending) > 0 {
		evt := s.pending[0]
		s.pending = s.pending[1:]
		targets := make([]Handler, 0, len(s.subs))
		for _, sub := range s.subs {
			if sub.wants(evt.Type) {
				targets = append(targets, sub.handler)
			}
		}
		s.mu.Unlock()
		for _, handler := range targets {
			notify(handler, evt)
		}
		s.mu.Lock()
	}
}

// notify isolates a panicking handler so the remaining subscribers and later
// events are still delivered.
func notify(handler Handler, evt event.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("crown subscriber panic on %s seq %d: %v", evt.Type, evt.Seq, r)
		}
	}()
	handler(evt)
}

// Subscribe registers handler for committed events of the given types, or of
// every type when none are given. The returned function cancels the
// subscription.
func (e *Engine) Subscribe(handler Handler, types ...event.Type) (cancel func()) {
	if handler == nil {
		return func() {}
	}
	id := e.subs.add(handler, types)
	var once sync.Once
	return func() {
		once.Do(func() { e.subs.remove(id) })
	}
}

func (e *Engine) deliver() {
	e.subs.drain()
}
