// Package engine serializes crown commands against one aggregate.
//
// Each call is decided against a consistent snapshot while the engine mutex
// is held. Accepted events are validated, folded, journaled, and committed in
// that order; any failure before commit leaves state untouched. Rejections
// are reported through the optional RejectionRecorder after the mutex is
// released, and subscribers receive committed events in sequence order.
package engine
