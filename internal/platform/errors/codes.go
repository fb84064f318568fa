// Package errors provides structured, coded errors for the crown service.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Crown contest errors
	CodeCrownNotAuthorized       Code = "CROWN_NOT_AUTHORIZED"
	CodeCrownNotHolder           Code = "CROWN_NOT_HOLDER"
	CodeCrownPaused              Code = "CROWN_PAUSED"
	CodeCrownInsufficientPayment Code = "CROWN_INSUFFICIENT_PAYMENT"
	CodeCrownAlreadyInState      Code = "CROWN_ALREADY_IN_STATE"
	CodeCrownInvalidCaller       Code = "CROWN_INVALID_CALLER"

	// Command envelope errors
	CodeCommandTypeUnsupported Code = "COMMAND_TYPE_UNSUPPORTED"
	CodePayloadDecodeFailed    Code = "PAYLOAD_DECODE_FAILED"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeSequenceConflict Code = "SEQUENCE_CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCrownInvalidCaller,
		CodeCommandTypeUnsupported,
		CodePayloadDecodeFailed:
		return codes.InvalidArgument

	// PermissionDenied - caller lacks the required role
	case CodeCrownNotAuthorized,
		CodeCrownNotHolder:
		return codes.PermissionDenied

	// FailedPrecondition - state doesn't allow operation
	case CodeCrownPaused,
		CodeCrownInsufficientPayment,
		CodeCrownAlreadyInState:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyExists:
		return codes.AlreadyExists

	// Aborted - another writer advanced the journal first
	case CodeSequenceConflict:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
