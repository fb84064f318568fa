package crown

import (
	"errors"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/command"
)

var (
	// ErrNotAuthorized indicates a non-administrator calling an admin-only operation.
	ErrNotAuthorized = apperrors.New(apperrors.CodeCrownNotAuthorized, "not authorized")
	// ErrNotHolder indicates a caller other than the holder calling a holder-only operation.
	ErrNotHolder = apperrors.New(apperrors.CodeCrownNotHolder, "not the crown holder")
	// ErrPaused indicates a claim or relinquish while the pause gate is closed.
	ErrPaused = apperrors.New(apperrors.CodeCrownPaused, "crown is paused")
	// ErrInsufficientPayment indicates a claim paying less than the required fee.
	ErrInsufficientPayment = apperrors.New(apperrors.CodeCrownInsufficientPayment, "payment is below the required fee")
	// ErrAlreadyInState indicates pause while paused or unpause while active.
	ErrAlreadyInState = apperrors.New(apperrors.CodeCrownAlreadyInState, "crown is already in the requested state")
	// ErrInvalidCaller indicates a claim by the null identity or the engine
	// sentinel.
	ErrInvalidCaller = apperrors.New(apperrors.CodeCrownInvalidCaller, "caller identity is invalid")
	// ErrCommandTypeUnsupported indicates a command the decider does not handle.
	ErrCommandTypeUnsupported = apperrors.New(apperrors.CodeCommandTypeUnsupported, "command type is not supported")
	// ErrPayloadDecodeFailed indicates a command payload that is not valid JSON.
	ErrPayloadDecodeFailed = apperrors.New(apperrors.CodePayloadDecodeFailed, "command payload could not be decoded")
)

func reject(sentinel *apperrors.Error) command.Decision {
	return rejectWithMetadata(sentinel, nil)
}

func rejectWithMetadata(sentinel *apperrors.Error, metadata map[string]string) command.Decision {
	return command.Reject(command.Rejection{
		Code:     string(sentinel.Code),
		Message:  sentinel.Message,
		Metadata: metadata,
	})
}

// RejectionError converts a decision's first rejection into an error matching
// one of the sentinels above with errors.Is.
func RejectionError(decision command.Decision) error {
	if !decision.Rejected() {
		return nil
	}
	errs := make([]error, 0, len(decision.Rejections))
	for _, rejection := range decision.Rejections {
		errs = append(errs, rejection.Err())
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
