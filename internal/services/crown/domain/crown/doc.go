// Package crown holds the contested-role aggregate: its state, the pure
// decider that judges commands against that state, and the fold that applies
// accepted events.
//
// The crown has two independent axes. The pause gate (active or paused) blocks
// claims and relinquishment. The holder (null, sentinel, or a claimant) moves
// through claim, relinquish, and revoke. Neither axis has a terminal state.
//
// Precondition order is part of the contract:
//   - claim checks payment before the pause gate
//   - relinquish checks the holder before the pause gate
//   - pause and unpause check the administrator before the current state
package crown
