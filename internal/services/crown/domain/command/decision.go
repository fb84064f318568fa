package command

import (
	"errors"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// Shared rejection codes used by every decider.
const (
	RejectionCodePayloadDecodeFailed    = string(apperrors.CodePayloadDecodeFailed)
	RejectionCodeCommandTypeUnsupported = string(apperrors.CodeCommandTypeUnsupported)
)

// Decision represents the pure outcome of handling a command.
type Decision struct {
	Events     []event.Event
	Rejections []Rejection
}

// Rejection captures a domain-level reason a command was declined.
type Rejection struct {
	Code    string
	Message string
	// Metadata fills the localized message template for Code.
	Metadata map[string]string
}

// Accept returns a decision that emits the provided events.
func Accept(events ...event.Event) Decision {
	return Decision{Events: append([]event.Event(nil), events...)}
}

// Reject returns a decision that carries the provided rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{Rejections: append([]Rejection(nil), rejections...)}
}

// Rejected reports whether the decision declined the command.
func (d Decision) Rejected() bool {
	return len(d.Rejections) > 0
}

// Validate checks that a decision carries events or rejections but not both.
func (d Decision) Validate() error {
	switch {
	case len(d.Events) == 0 && len(d.Rejections) == 0:
		return errors.New("decision must emit events or rejections")
	case len(d.Events) > 0 && len(d.Rejections) > 0:
		return errors.New("decision cannot both emit events and reject")
	}
	return nil
}

// Err converts the first rejection into a coded error.
func (r Rejection) Err() error {
	return apperrors.WithMetadata(apperrors.Code(r.Code), r.Message, r.Metadata)
}
