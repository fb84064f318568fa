// Package event defines the crown event envelope and the registry of known
// event types.
//
// Events are immutable facts emitted by accepted decisions. The registry checks
// type, addressing, and payload before persistence assigns sequence and
// integrity fields. Consumers filter by Type.
package event
