package crown

import (
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/command"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

const (
	CommandTypeClaim      command.Type = "crown.claim"
	CommandTypeToggleMood command.Type = "crown.toggle_mood"
	CommandTypeRelinquish command.Type = "crown.relinquish"
	CommandTypeSetFee     command.Type = "crown.set_fee"
	CommandTypeRevoke     command.Type = "crown.revoke"
	CommandTypePause      command.Type = "crown.pause"
	CommandTypeUnpause    command.Type = "crown.unpause"

	EventTypeClaimed      event.Type = "crown.claimed"
	EventTypeMoodChanged  event.Type = "crown.mood_changed"
	EventTypeRelinquished event.Type = "crown.relinquished"
	EventTypeFeeChanged   event.Type = "crown.fee_changed"
	EventTypeRevoked      event.Type = "crown.revoked"
	EventTypePaused       event.Type = "crown.paused"
	EventTypeUnpaused     event.Type = "crown.unpaused"
)

// ClaimPayload carries the payment sent with a claim.
type ClaimPayload struct {
	Payment uint64 `json:"payment"`
}

// RelinquishPayload carries the holder's free-form reason.
type RelinquishPayload struct {
	Reason string `json:"reason"`
}

// SetFeePayload carries the new required fee.
type SetFeePayload struct {
	Fee uint64 `json:"fee"`
}

// ClaimedPayload names the new holder.
type ClaimedPayload struct {
	Holder Identity `json:"holder"`
}

// MoodChangedPayload carries the new mood flag.
type MoodChangedPayload struct {
	Mood bool `json:"mood"`
}

// RelinquishedPayload carries the reason given on relinquishment.
type RelinquishedPayload struct {
	Reason string `json:"reason"`
}

// FeeChangedPayload carries the new required fee.
type FeeChangedPayload struct {
	Fee uint64 `json:"fee"`
}

// RevokedPayload, PausedPayload and UnpausedPayload are empty.
type (
	RevokedPayload  struct{}
	PausedPayload   struct{}
	UnpausedPayload struct{}
)
