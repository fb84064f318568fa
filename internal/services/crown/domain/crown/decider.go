package crown

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/command"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// Decide returns the decision for a crown command against current state.
// It never mutates state; a rejection means nothing changed.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	// Identities compare exactly; no normalization happens here.
	caller := Identity(cmd.ActorID)

	switch cmd.Type {
	case CommandTypeClaim:
		var payload ClaimPayload
		if err := decodePayload(cmd.PayloadJSON, &payload); err != nil {
			return reject(ErrPayloadDecodeFailed)
		}
		if !state.CanClaim(caller) {
			return reject(ErrInvalidCaller)
		}
		if payload.Payment < state.Fee {
			return rejectWithMetadata(ErrInsufficientPayment, map[string]string{
				"Fee":     strconv.FormatUint(state.Fee, 10),
				"Payment": strconv.FormatUint(payload.Payment, 10),
			})
		}
		if state.Paused {
			return reject(ErrPaused)
		}
		return accept(cmd, EventTypeClaimed, ClaimedPayload{Holder: caller}, now)

	case CommandTypeToggleMood:
		if !state.IsHolder(caller) {
			return reject(ErrNotHolder)
		}
		return accept(cmd, EventTypeMoodChanged, MoodChangedPayload{Mood: !state.Mood}, now)

	case CommandTypeRelinquish:
		var payload RelinquishPayload
		if err := decodePayload(cmd.PayloadJSON, &payload); err != nil {
			return reject(ErrPayloadDecodeFailed)
		}
		if !state.IsHolder(caller) {
			return reject(ErrNotHolder)
		}
		if state.Paused {
			return reject(ErrPaused)
		}
		return accept(cmd, EventTypeRelinquished, RelinquishedPayload{Reason: payload.Reason}, now)

	case CommandTypeSetFee:
		var payload SetFeePayload
		if err := decodePayload(cmd.PayloadJSON, &payload); err != nil {
			return reject(ErrPayloadDecodeFailed)
		}
		if !state.IsAdmin(caller) {
			return reject(ErrNotAuthorized)
		}
		return accept(cmd, EventTypeFeeChanged, FeeChangedPayload{Fee: payload.Fee}, now)

	case CommandTypeRevoke:
		if !state.IsAdmin(caller) {
			return reject(ErrNotAuthorized)
		}
		return accept(cmd, EventTypeRevoked, RevokedPayload{}, now)

	case CommandTypePause:
		if !state.IsAdmin(caller) {
			return reject(ErrNotAuthorized)
		}
		if state.Paused {
			return reject(ErrAlreadyInState)
		}
		return accept(cmd, EventTypePaused, PausedPayload{}, now)

	case CommandTypeUnpause:
		if !state.IsAdmin(caller) {
			return reject(ErrNotAuthorized)
		}
		if !state.Paused {
			return reject(ErrAlreadyInState)
		}
		return accept(cmd, EventTypeUnpaused, UnpausedPayload{}, now)
	}

	return reject(ErrCommandTypeUnsupported)
}

func accept(cmd command.Command, eventType event.Type, payload any, now func() time.Time) command.Decision {
	evt, err := command.NewEvent(cmd, eventType, payload, now())
	if err != nil {
		return reject(ErrPayloadDecodeFailed)
	}
	return command.Accept(evt)
}

func decodePayload(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}
