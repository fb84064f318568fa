package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	platformotel "github.com/louisbranch/hippycrown/internal/platform/otel"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/command"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventJournal appends events to durable storage.
type EventJournal interface {
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
}

// RejectionRecorder records rejected commands.
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, cmd command.Command, rejection command.Rejection) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal appends every accepted event to journal before it is committed.
// The event carries the sequence the engine expects next.
func WithJournal(journal EventJournal) Option {
	return func(e *Engine) { e.journal = journal }
}

// WithAudit records rejected commands through recorder.
func WithAudit(recorder RejectionRecorder) Option {
	return func(e *Engine) { e.audit = recorder }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRegistry overrides the event registry used to validate appends.
func WithRegistry(registry *event.Registry) Option {
	return func(e *Engine) { e.registry = registry }
}

// WithTracer overrides the tracer that spans each command.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

func withRestored(state crown.State, events []event.Event) Option {
	return func(e *Engine) {
		e.state = state
		e.events = events
		if n := len(events); n > 0 {
			e.lastSeq = events[n-1].Seq
		}
	}
}

// Engine holds the state of one crown and enforces its transition rules.
type Engine struct {
	mu       sync.Mutex
	genesis  crown.Genesis
	state    crown.State
	events   []event.Event
	lastSeq  uint64
	registry *event.Registry
	journal  EventJournal
	audit    RejectionRecorder
	now      func() time.Time
	tracer   trace.Tracer

	subs subscriptions
}

// New creates an engine in its initial state: null holder, mood off, active.
func New(genesis crown.Genesis, opts ...Option) (*Engine, error) {
	if genesis.Sentinel == "" {
		genesis.Sentinel = crown.SentinelFor(genesis.EngineID)
	}
	if err := genesis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	e := &Engine{
		genesis: genesis,
		state:   crown.NewState(genesis),
		now:     time.Now,
		tracer:  platformotel.Tracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		registry, err := crown.NewEventRegistry()
		if err != nil {
			return nil, err
		}
		e.registry = registry
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.tracer == nil {
		e.tracer = platformotel.Tracer()
	}
	return e, nil
}

// Claim makes caller the holder when payment covers the fee and the engine
// is active. Overpayment is accepted and kept.
func (e *Engine) Claim(ctx context.Context, caller crown.Identity, payment uint64) (event.Event, error) {
	return e.run(ctx, crown.CommandTypeClaim, caller, crown.ClaimPayload{Payment: payment})
}

// ToggleMood flips the mood flag. Only the holder may call it, paused or not.
func (e *Engine) ToggleMood(ctx context.Context, caller crown.Identity) (event.Event, error) {
	return e.run(ctx, crown.CommandTypeToggleMood, caller, nil)
}

// Relinquish vacates the crown on behalf of its holder.
func (e *Engine) Relinquish(ctx context.Context, caller crown.Identity, reason string) (event.Event, error) {
	return e.run(ctx, crown.CommandTypeRelinquish, caller, crown.RelinquishPayload{Reason: reason})
}

// SetFee replaces the required claim fee. Admin only.
func (e *Engine) SetFee(ctx context.Context, caller crown.Identity, fee uint64) (event.Event, error) {
	return e.run(ctx, crown.CommandTypeSetFee, caller, crown.SetFeePayload{Fee: fee})
}

// Revoke hands the crown to the engine sentinel and clears the mood. Admin only.
func (e *Engine) Revoke(ctx context.Context, caller crown.Identity) (event.Event, error) {
	return e.run(ctx, crown.CommandTypeRevoke, caller, nil)
}

// Pause closes the claim and relinquish gate. Admin only.
func (e *Engine) Pause(ctx context.Context, caller crown.Identity) (event.Event, error) {
	return e.run(ctx, crown.CommandTypePause, caller, nil)
}

// Unpause reopens the claim and relinquish gate. Admin only.
func (e *Engine) Unpause(ctx context.Context, caller crown.Identity) (event.Event, error) {
	return e.run(ctx, crown.CommandTypeUnpause, caller, nil)
}

func (e *Engine) run(ctx context.Context, typ command.Type, caller crown.Identity, payload any) (event.Event, error) {
	cmd, err := command.New(e.genesis.EngineID, typ, string(caller), payload)
	if err != nil {
		return event.Event{}, err
	}
	return e.Execute(ctx, cmd)
}

// Execute decides cmd and, when accepted, commits its single event.
func (e *Engine) Execute(ctx context.Context, cmd command.Command) (event.Event, error) {
	ctx, span := e.tracer.Start(ctx, string(cmd.Type), trace.WithAttributes(
		attribute.String("crown.engine_id", e.genesis.EngineID),
		attribute.String("crown.caller", cmd.ActorID),
	))
	defer span.End()

	if cmd.EngineID == "" {
		cmd.EngineID = e.genesis.EngineID
	}
	if cmd.EngineID != e.genesis.EngineID {
		err := fmt.Errorf("command engine %q does not match %q", cmd.EngineID, e.genesis.EngineID)
		span.SetStatus(otelcodes.Error, err.Error())
		return event.Event{}, err
	}

	evt, rejection, err := e.commit(ctx, cmd)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return event.Event{}, err
	case rejection != nil:
		span.SetAttributes(
			attribute.String("crown.rejection", rejection.Code),
			attribute.String("rpc.grpc.status_code", apperrors.Code(rejection.Code).GRPCCode().String()),
		)
		rejected := rejection.Err()
		if e.audit != nil {
			if auditErr := e.audit.RecordRejection(ctx, cmd, *rejection); auditErr != nil {
				rejected = errors.Join(rejected, fmt.Errorf("record rejection: %w", auditErr))
			}
		}
		span.SetStatus(otelcodes.Error, rejection.Message)
		return event.Event{}, rejected
	}

	span.SetAttributes(attribute.String("crown.seq", strconv.FormatUint(evt.Seq, 10)))
	e.deliver()
	return evt, nil
}

// commit holds the mutex from decide through state replacement.
func (e *Engine) commit(ctx context.Context, cmd command.Command) (event.Event, *command.Rejection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return event.Event{}, nil, err
	}

	decision := crown.Decide(e.state, cmd, e.now)
	if err := decision.Validate(); err != nil {
		return event.Event{}, nil, err
	}
	if decision.Rejected() {
		rejection := decision.Rejections[0]
		return event.Event{}, &rejection, nil
	}
	if len(decision.Events) != 1 {
		return event.Event{}, nil, fmt.Errorf("%s: expected one event, got %d", cmd.Type, len(decision.Events))
	}

	evt, err := e.registry.ValidateForAppend(decision.Events[0])
	if err != nil {
		return event.Event{}, nil, err
	}
	next, err := crown.Fold(e.state, evt)
	if err != nil {
		return event.Event{}, nil, err
	}

	// The journal refuses the append unless its head is still at lastSeq.
	evt.Seq = e.lastSeq + 1
	if e.journal != nil {
		stored, err := e.journal.AppendEvent(ctx, evt)
		if err != nil {
			return event.Event{}, nil, fmt.Errorf("append %s: %w", evt.Type, err)
		}
		evt = stored
	}

	e.state = next
	e.lastSeq = evt.Seq
	e.events = append(e.events, evt)
	e.subs.enqueue(evt)
	return evt, nil, nil
}

// ID returns the engine id.
func (e *Engine) ID() string {
	return e.genesis.EngineID
}

// Genesis returns the constructor arguments.
func (e *Engine) Genesis() crown.Genesis {
	return e.genesis
}

// State returns a snapshot of the current state.
func (e *Engine) State() crown.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Holder returns the current holder.
func (e *Engine) Holder() crown.Identity { return e.State().Holder }

// Mood returns the mood flag.
func (e *Engine) Mood() bool { return e.State().Mood }

// Fee returns the required claim fee.
func (e *Engine) Fee() uint64 { return e.State().Fee }

// Paused reports whether claim and relinquish are blocked.
func (e *Engine) Paused() bool { return e.State().Paused }

// Admin returns the administrator identity.
func (e *Engine) Admin() crown.Identity { return e.genesis.Admin }

// Sentinel returns the engine-owned identity used after a revoke.
func (e *Engine) Sentinel() crown.Identity { return e.genesis.Sentinel }

// Vacant reports whether nobody holds the crown.
func (e *Engine) Vacant() bool { return e.State().Vacant() }

// LastSeq returns the sequence number of the newest committed event.
func (e *Engine) LastSeq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeq
}

// Events returns committed events with a sequence greater than afterSeq.
func (e *Engine) Events(afterSeq uint64) []event.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]event.Event, 0, len(e.events))
	for _, evt := range e.events {
		if evt.Seq > afterSeq {
			out = append(out, evt)
		}
	}
	return out
}
