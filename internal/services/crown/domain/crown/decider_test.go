package crown

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/command"
)

const (
	testEngineID = "engine-1"
	testAdmin    = Identity("admin")
	alice        = Identity("alice")
	bob          = Identity("bob")
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

func testGenesis() Genesis {
	return Genesis{
		EngineID:   testEngineID,
		Admin:      testAdmin,
		Sentinel:   SentinelFor(testEngineID),
		DefaultFee: 10,
	}
}

func testCommand(t *testing.T, typ command.Type, caller Identity, payload any) command.Command {
	t.Helper()
	cmd, err := command.New(testEngineID, typ, string(caller), payload)
	if err != nil {
		t.Fatalf("new command: %v", err)
	}
	return cmd
}

func decideErr(t *testing.T, state State, cmd command.Command) error {
	t.Helper()
	decision := Decide(state, cmd, fixedNow)
	if err := decision.Validate(); err != nil {
		t.Fatalf("invalid decision: %v", err)
	}
	return RejectionError(decision)
}

func TestDecideRejections(t *testing.T) {
	active := NewState(testGenesis())
	held := active
	held.Holder = alice
	paused := active
	paused.Paused = true
	heldPaused := held
	heldPaused.Paused = true
	revoked := active
	revoked.Holder = active.Sentinel

	tests := []struct {
		name  string
		state State
		typ   command.Type
		actor Identity
		data  any
		want  error
	}{
		{"claim below fee", active, CommandTypeClaim, alice, ClaimPayload{Payment: 9}, ErrInsufficientPayment},
		{"claim below fee while paused reports payment first", paused, CommandTypeClaim, alice, ClaimPayload{Payment: 0}, ErrInsufficientPayment},
		{"claim while paused", paused, CommandTypeClaim, alice, ClaimPayload{Payment: 10}, ErrPaused},
		{"toggle by non-holder", held, CommandTypeToggleMood, bob, nil, ErrNotHolder},
		{"toggle with vacant crown", active, CommandTypeToggleMood, alice, nil, ErrNotHolder},
		{"relinquish by non-holder", held, CommandTypeRelinquish, bob, RelinquishPayload{Reason: "x"}, ErrNotHolder},
		{"relinquish by non-holder while paused reports holder first", heldPaused, CommandTypeRelinquish, bob, RelinquishPayload{}, ErrNotHolder},
		{"relinquish while paused", heldPaused, CommandTypeRelinquish, alice, RelinquishPayload{Reason: "x"}, ErrPaused},
		{"set fee by non-admin", active, CommandTypeSetFee, alice, SetFeePayload{Fee: 1}, ErrNotAuthorized},
		{"revoke by non-admin", held, CommandTypeRevoke, alice, nil, ErrNotAuthorized},
		{"pause by non-admin", active, CommandTypePause, alice, nil, ErrNotAuthorized},
		{"pause by non-admin while paused reports auth first", paused, CommandTypePause, alice, nil, ErrNotAuthorized},
		{"pause twice", paused, CommandTypePause, testAdmin, nil, ErrAlreadyInState},
		{"unpause by non-admin", paused, CommandTypeUnpause, bob, nil, ErrNotAuthorized},
		{"unpause while active", active, CommandTypeUnpause, testAdmin, nil, ErrAlreadyInState},
		{"claim by empty caller", active, CommandTypeClaim, "", ClaimPayload{Payment: 10}, ErrInvalidCaller},
		{"claim by null caller", active, CommandTypeClaim, NullIdentity, ClaimPayload{Payment: 10}, ErrInvalidCaller},
		{"claim by sentinel", active, CommandTypeClaim, SentinelFor(testEngineID), ClaimPayload{Payment: 10}, ErrInvalidCaller},
		{"claim by null caller below fee while paused", paused, CommandTypeClaim, NullIdentity, ClaimPayload{}, ErrInvalidCaller},
		{"set fee by null caller", active, CommandTypeSetFee, NullIdentity, SetFeePayload{Fee: 1}, ErrNotAuthorized},
		{"set fee by empty caller", active, CommandTypeSetFee, "", SetFeePayload{Fee: 1}, ErrNotAuthorized},
		{"pause by sentinel", active, CommandTypePause, SentinelFor(testEngineID), nil, ErrNotAuthorized},
		{"unpause by empty caller", paused, CommandTypeUnpause, "", nil, ErrNotAuthorized},
		{"revoke by null caller", held, CommandTypeRevoke, NullIdentity, nil, ErrNotAuthorized},
		{"toggle by empty caller", active, CommandTypeToggleMood, "", nil, ErrNotHolder},
		{"toggle by null caller", active, CommandTypeToggleMood, NullIdentity, nil, ErrNotHolder},
		{"toggle by sentinel after revoke", revoked, CommandTypeToggleMood, SentinelFor(testEngineID), nil, ErrNotHolder},
		{"relinquish by sentinel after revoke", revoked, CommandTypeRelinquish, SentinelFor(testEngineID), RelinquishPayload{}, ErrNotHolder},
		{"toggle by padded holder identity", held, CommandTypeToggleMood, " alice ", nil, ErrNotHolder},
		{"unknown command", active, command.Type("crown.abdicate_everything"), alice, nil, ErrCommandTypeUnsupported},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := decideErr(t, tc.state, testCommand(t, tc.typ, tc.actor, tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDecideRejectsUndecodablePayload(t *testing.T) {
	cmd := command.Command{EngineID: testEngineID, Type: CommandTypeClaim, ActorID: "alice", PayloadJSON: []byte(`{"payment":-1}`)}
	if err := decideErr(t, NewState(testGenesis()), cmd); !errors.Is(err, ErrPayloadDecodeFailed) {
		t.Fatalf("expected ErrPayloadDecodeFailed, got %v", err)
	}
}

func TestDecideClaimAcceptsOverpayment(t *testing.T) {
	decision := Decide(NewState(testGenesis()), testCommand(t, CommandTypeClaim, alice, ClaimPayload{Payment: 15}), fixedNow)
	if decision.Rejected() || len(decision.Events) != 1 {
		t.Fatalf("expected one event, got %+v", decision)
	}
	evt := decision.Events[0]
	if evt.Type != EventTypeClaimed {
		t.Fatalf("expected %s, got %s", EventTypeClaimed, evt.Type)
	}
	var payload ClaimedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Holder != alice {
		t.Fatalf("expected holder alice, got %s", payload.Holder)
	}
	if evt.ActorID != "alice" || evt.EngineID != testEngineID || !evt.Timestamp.Equal(fixedNow()) {
		t.Fatalf("unexpected envelope %+v", evt)
	}
}

func TestDecideAdminOperationsIgnorePause(t *testing.T) {
	state := NewState(testGenesis())
	state.Paused = true
	state.Holder = alice
	state.Mood = true

	for _, typ := range []command.Type{CommandTypeSetFee, CommandTypeRevoke, CommandTypeUnpause} {
		decision := Decide(state, testCommand(t, typ, testAdmin, SetFeePayload{Fee: 3}), fixedNow)
		if decision.Rejected() {
			t.Fatalf("%s: expected acceptance while paused, got %+v", typ, decision.Rejections)
		}
	}
	decision := Decide(state, testCommand(t, CommandTypeToggleMood, alice, nil), fixedNow)
	if decision.Rejected() {
		t.Fatalf("expected holder to toggle mood while paused, got %+v", decision.Rejections)
	}
}

func TestDecideRevokeWithVacantCrown(t *testing.T) {
	state := NewState(testGenesis())
	state.Holder = state.Sentinel
	decision := Decide(state, testCommand(t, CommandTypeRevoke, testAdmin, nil), fixedNow)
	if decision.Rejected() {
		t.Fatalf("expected revoke of already revoked crown to succeed, got %+v", decision.Rejections)
	}
}

func TestDecideDoesNotMutateState(t *testing.T) {
	state := NewState(testGenesis())
	before := state
	_ = Decide(state, testCommand(t, CommandTypeClaim, alice, ClaimPayload{Payment: 10}), fixedNow)
	if state != before {
		t.Fatal("expected decide to leave state untouched")
	}
}

func TestDecideClaimAcceptsIdentitiesThatOnlyLookReserved(t *testing.T) {
	state := NewState(testGenesis())
	for _, caller := range []Identity{"crown:bob", SentinelFor("engine-2"), " alice "} {
		decision := Decide(state, testCommand(t, CommandTypeClaim, caller, ClaimPayload{Payment: 10}), fixedNow)
		if decision.Rejected() {
			t.Fatalf("%q: expected claim to succeed, got %+v", caller, decision.Rejections)
		}
		next, err := Fold(state, decision.Events[0])
		if err != nil {
			t.Fatalf("%q: fold: %v", caller, err)
		}
		if next.Holder != caller {
			t.Fatalf("expected holder %q, got %q", caller, next.Holder)
		}
	}
}

func TestDecideInsufficientPaymentCarriesFee(t *testing.T) {
	state := NewState(testGenesis())
	decision := Decide(state, testCommand(t, CommandTypeClaim, alice, ClaimPayload{Payment: 3}), fixedNow)
	if !decision.Rejected() {
		t.Fatal("expected rejection")
	}
	metadata := decision.Rejections[0].Metadata
	if metadata["Fee"] != "10" || metadata["Payment"] != "3" {
		t.Fatalf("unexpected metadata %v", metadata)
	}
	var coded *apperrors.Error
	if err := RejectionError(decision); !errors.As(err, &coded) || coded.Metadata["Fee"] != "10" {
		t.Fatalf("expected coded error with fee metadata, got %v", err)
	}
}
