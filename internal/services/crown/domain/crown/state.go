package crown

import (
	"fmt"
	"time"
)

// Genesis captures the constructor arguments of an engine.
type Genesis struct {
	EngineID   string
	Admin      Identity
	Sentinel   Identity
	DefaultFee uint64
	CreatedAt  time.Time
}

// Validate checks the genesis invariants.
func (g Genesis) Validate() error {
	if g.EngineID == "" {
		return fmt.Errorf("engine id is required")
	}
	if g.Admin.IsNull() {
		return fmt.Errorf("admin identity is required")
	}
	if g.Sentinel.IsNull() || !g.Sentinel.IsSentinel() {
		return fmt.Errorf("sentinel identity is invalid")
	}
	if g.Admin == g.Sentinel {
		return fmt.Errorf("admin identity cannot be the engine sentinel")
	}
	return nil
}

// State is the in-memory crown aggregate.
type State struct {
	// Admin authorizes fee changes, pausing, and revoke. Fixed at genesis.
	Admin Identity
	// Sentinel is the engine-owned holder after a revoke.
	Sentinel Identity
	// Holder is NullIdentity, Sentinel, or the last paying claimant.
	Holder Identity
	// Fee is the minimum accepted claim payment.
	Fee uint64
	// Mood is the holder's "hippy" flag.
	Mood bool
	// Paused blocks claim and relinquish.
	Paused bool
}

// NewState returns the initial state for a genesis.
func NewState(g Genesis) State {
	return State{
		Admin:    g.Admin,
		Sentinel: g.Sentinel,
		Holder:   NullIdentity,
		Fee:      g.DefaultFee,
	}
}

// Vacant reports whether nobody holds the crown. Null and sentinel holders
// are equally vacant.
func (s State) Vacant() bool {
	return s.Holder.IsNull() || s.Holder == s.Sentinel
}

// IsHolder reports whether caller currently holds the crown.
func (s State) IsHolder(caller Identity) bool {
	return !s.Vacant() && caller == s.Holder
}

// CanClaim reports whether caller may become the holder. Only the null
// identity and this engine's sentinel are reserved.
func (s State) CanClaim(caller Identity) bool {
	return !caller.IsNull() && caller != s.Sentinel
}

// IsAdmin reports whether caller is the administrator.
func (s State) IsAdmin(caller Identity) bool {
	return !caller.IsNull() && caller == s.Admin
}
