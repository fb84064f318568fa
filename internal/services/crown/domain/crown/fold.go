package crown

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// Fold applies an accepted event to crown state. Unknown event types leave
// state unchanged.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeClaimed:
		var payload ClaimedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("decode %s payload: %w", evt.Type, err)
		}
		state.Holder = payload.Holder
	case EventTypeMoodChanged:
		var payload MoodChangedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("decode %s payload: %w", evt.Type, err)
		}
		state.Mood = payload.Mood
	case EventTypeRelinquished:
		state.Holder = NullIdentity
	case EventTypeFeeChanged:
		var payload FeeChangedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("decode %s payload: %w", evt.Type, err)
		}
		state.Fee = payload.Fee
	case EventTypeRevoked:
		state.Holder = state.Sentinel
		state.Mood = false
	case EventTypePaused:
		state.Paused = true
	case EventTypeUnpaused:
		state.Paused = false
	}
	return state, nil
}

// Applier adapts Fold to replay's state-as-any contract.
type Applier struct{}

// Apply folds evt into state, which must be a State.
func (Applier) Apply(state any, evt event.Event) (any, error) {
	current, ok := state.(State)
	if !ok {
		return state, fmt.Errorf("expected crown.State, got %T", state)
	}
	return Fold(current, evt)
}
